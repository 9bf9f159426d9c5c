package geocache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
)

type fakeHash struct {
	values  map[string]string
	readErr error
}

func (f *fakeHash) HGetAll(_ context.Context, _ string) *redis.MapStringStringCmd {
	return redis.NewMapStringStringResult(f.values, f.readErr)
}

func (f *fakeHash) HSet(_ context.Context, _ string, values ...interface{}) *redis.IntCmd {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	for i := 0; i+1 < len(values); i += 2 {
		key, _ := values[i].(string)
		switch v := values[i+1].(type) {
		case []byte:
			f.values[key] = string(v)
		case string:
			f.values[key] = v
		}
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (f *fakeHash) Close() error { return nil }

func TestRedisStore_SaveAndLoad(t *testing.T) {
	store := newRedisStore(&fakeHash{}, "test:cache")
	ctx := context.Background()

	entry := models.CacheEntry{
		Key:           Key(36.3, -94.2),
		Label:         "Feed Store",
		Source:        models.SourcePlacesAPI,
		Latitude:      36.3,
		Longitude:     -94.2,
		SchemaVersion: models.CacheSchemaVersion,
	}
	if err := store.Save(ctx, entry); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got) != 1 || got[0].Key != entry.Key || got[0].Label != "Feed Store" || got[0].Source != models.SourcePlacesAPI {
		t.Errorf("unexpected entries %+v", got)
	}
}

func TestRedisStore_LoadAllSkipsUnreadableRecords(t *testing.T) {
	good, _ := json.Marshal(models.CacheEntry{Label: "12 Main St", Source: models.SourceFreeGeocode})
	store := newRedisStore(&fakeHash{values: map[string]string{
		"36.3000,-94.2000": string(good),
		"36.3100,-94.2000": "{not json",
	}}, "test:cache")

	got, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got) != 1 || got[0].Key != "36.3000,-94.2000" || got[0].Label != "12 Main St" {
		t.Errorf("expected only the readable record, got %+v", got)
	}
}

func TestRedisStore_LoadAllError(t *testing.T) {
	store := newRedisStore(&fakeHash{readErr: errors.New("connection refused")}, "test:cache")

	if _, err := store.LoadAll(context.Background()); err == nil {
		t.Error("expected error")
	}
}
