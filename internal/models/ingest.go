package models

// FixBatch is the request body for fix ingestion
type FixBatch struct {
	Fixes []GpsFix `json:"fixes" binding:"required"`
}

// IngestResult reports how many fixes of a batch were stored
type IngestResult struct {
	Received int `json:"received"`
	Accepted int `json:"accepted"`
	Stored   int `json:"stored"`
}

// QuotaStatus is today's usage of the paid lookup budget
type QuotaStatus struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}
