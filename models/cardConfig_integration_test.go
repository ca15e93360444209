package models_test

import (
	"encoding/json"
	"testing"

	"github.com/apexcadcam/apex-item/config"
	"github.com/apexcadcam/apex-item/models"
)

const cardConfigCacheKey = "apex_item:item_price_card_config"

// tamperCachedCardConfig rewrites the single cached entry through fn so a
// later cache hit is observable as the tampered payload.
func tamperCachedCardConfig(t *testing.T, fn func(payload string) string) {
	t.Helper()
	rdb := config.GetRedisDB()
	entries, err := rdb.HGetAll(config.GetRedisContext(), cardConfigCacheKey).Result()
	if err != nil {
		t.Fatalf("read cache hash: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("cached entries = %d, want exactly 1", len(entries))
	}
	for field, payload := range entries {
		if err := config.SetRedisHashField(cardConfigCacheKey, field, fn(payload)); err != nil {
			t.Fatalf("rewrite cache entry: %v", err)
		}
	}
}

func TestGetItemPriceCardConfig_ServesFromCacheUntilSettingsChange(t *testing.T) {
	ctx := requireIntegration(t)
	db := config.GetDB()

	if err := models.ClearItemPriceCardConfigCache(ctx); err != nil {
		t.Fatalf("clear cache: %v", err)
	}
	t.Cleanup(func() { _ = models.ClearItemPriceCardConfigCache(ctx) })

	listView := models.ListViewSetting{
		DocType:     "Item Price",
		RawFields:   `[{"fieldname":"price_list_rate","label":"Rate"},{"fieldname":"actual_qty","label":"In Stock"}]`,
		TotalFields: 4,
	}
	if err := db.WithContext(ctx).Create(&listView).Error; err != nil {
		t.Fatalf("create list view setting: %v", err)
	}
	t.Cleanup(func() { db.Delete(&listView) })

	first, err := models.GetItemPriceCardConfig(ctx, true)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}

	// Mark the cached payload so a rebuild is distinguishable from a hit.
	tamperCachedCardConfig(t, func(payload string) string {
		var cached models.CardConfig
		if err := json.Unmarshal([]byte(payload), &cached); err != nil {
			t.Fatalf("decode cached payload: %v", err)
		}
		cached.EmptyStateText = "cache-hit-marker"
		marked, _ := json.Marshal(cached)
		return string(marked)
	})

	second, err := models.GetItemPriceCardConfig(ctx, false)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second.EmptyStateText != "cache-hit-marker" {
		t.Fatal("second call re-ran field resolution instead of serving the cached entry")
	}
	if len(second.Fields) != len(first.Fields) {
		t.Fatalf("cached fields = %d, want %d", len(second.Fields), len(first.Fields))
	}
	for i := range first.Fields {
		if second.Fields[i].Fieldname != first.Fields[i].Fieldname {
			t.Fatalf("cached field %d = %s, want %s", i, second.Fields[i].Fieldname, first.Fields[i].Fieldname)
		}
	}

	// Touching the list view shifts the signature, so the marked entry is
	// skipped and the config rebuilt.
	err = db.WithContext(ctx).Model(&listView).
		Update("raw_fields", `[{"fieldname":"actual_qty","label":"In Stock"},{"fieldname":"price_list_rate","label":"Rate"}]`).Error
	if err != nil {
		t.Fatalf("update list view setting: %v", err)
	}

	third, err := models.GetItemPriceCardConfig(ctx, false)
	if err != nil {
		t.Fatalf("third call: %v", err)
	}
	if third.EmptyStateText == "cache-hit-marker" {
		t.Fatal("settings change did not invalidate the cached entry")
	}
}

func TestGetItemPriceCardConfig_DropsCorruptCacheEntry(t *testing.T) {
	ctx := requireIntegration(t)

	if err := models.ClearItemPriceCardConfigCache(ctx); err != nil {
		t.Fatalf("clear cache: %v", err)
	}
	t.Cleanup(func() { _ = models.ClearItemPriceCardConfigCache(ctx) })

	built, err := models.GetItemPriceCardConfig(ctx, true)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	tamperCachedCardConfig(t, func(string) string { return `{broken` })

	rebuilt, err := models.GetItemPriceCardConfig(ctx, false)
	if err != nil {
		t.Fatalf("rebuild after corruption: %v", err)
	}
	if rebuilt.EmptyStateText != built.EmptyStateText {
		t.Fatalf("rebuilt empty state = %q, want %q", rebuilt.EmptyStateText, built.EmptyStateText)
	}
	if len(rebuilt.Fields) != len(built.Fields) {
		t.Fatalf("rebuilt fields = %d, want %d", len(rebuilt.Fields), len(built.Fields))
	}
}
