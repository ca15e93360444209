package models

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apexcadcam/apex-item/config"
	"github.com/apexcadcam/apex-item/utils"
)

const cardConfigCacheKey = "apex_item:item_price_card_config"

// ListViewColumn is one column entry as the list view UI saves it.
type ListViewColumn struct {
	Fieldname string `json:"fieldname"`
	Label     string `json:"label"`
}

// GetItemPriceCardConfig returns the card configuration, serving from the
// redis cache unless force is set. Cache entries are keyed by a signature of
// the underlying settings, so they expire implicitly on any settings change.
func GetItemPriceCardConfig(ctx context.Context, force bool) (*CardConfig, error) {
	field := cardConfigCacheField(ctx)

	if !force {
		if cached := getCachedCardConfig(field); cached != nil {
			return cached, nil
		}
	}

	cardConfig, err := buildItemPriceCardConfig(ctx)
	if err != nil {
		return nil, err
	}
	cacheCardConfig(field, cardConfig)
	return cardConfig, nil
}

// ClearItemPriceCardConfigCache drops every cached card config variant.
func ClearItemPriceCardConfigCache(ctx context.Context) error {
	return config.RemoveRedisKey(cardConfigCacheKey)
}

func getCachedCardConfig(field string) *CardConfig {
	cached, exists, err := config.GetRedisHashField(cardConfigCacheKey, field)
	if err != nil || !exists {
		return nil
	}
	var cardConfig CardConfig
	if err := json.Unmarshal([]byte(cached), &cardConfig); err != nil {
		// corrupted entry, drop it and rebuild next time
		_ = config.RemoveRedisHashField(cardConfigCacheKey, field)
		return nil
	}
	return &cardConfig
}

func cacheCardConfig(field string, cardConfig *CardConfig) {
	payload, err := json.Marshal(cardConfig)
	if err != nil {
		return
	}
	if err := config.SetRedisHashField(cardConfigCacheKey, field, string(payload)); err != nil {
		config.LogError(config.GetLogger(), "models", "cacheCardConfig", "set cache", field, err)
		return
	}
	// bound the hash: stale signature variants die with the key
	_ = config.ExpireRedisKey(cardConfigCacheKey, utils.GetCacheLifespan())
}

func cardConfigCacheField(ctx context.Context) string {
	site, _ := utils.GetSiteFromContext(ctx)
	if site == "" {
		site = "default"
	}
	user, _ := utils.GetUsernameFromContext(ctx)
	if user == "" {
		user = "Guest"
	}
	return fmt.Sprintf("%s:%s:%s", site, user, settingsSignature(ctx))
}

// settingsSignature hashes the last-modified stamps and raw field layout of
// the settings feeding the card. Any change yields a fresh cache field.
func settingsSignature(ctx context.Context) string {
	var parts []string

	listView, err := GetItemPriceListViewSetting(ctx)
	if err == nil && listView != nil {
		parts = append(parts, listView.UpdatedAt.UTC().String(), listView.RawFields)
	}

	setting, err := GetCardSetting(ctx)
	if err == nil && setting != nil {
		parts = append(parts, setting.UpdatedAt.UTC().String())
	}

	if len(parts) == 0 {
		return "default"
	}
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func buildItemPriceCardConfig(ctx context.Context) (*CardConfig, error) {
	defaults := DefaultCardConfig()
	showItemImage := defaults.ShowItemImage
	emptyStateText := defaults.EmptyStateText

	setting, err := GetCardSetting(ctx)
	if err != nil {
		return nil, err
	}
	if setting != nil {
		if setting.ShowItemImage != nil {
			showItemImage = *setting.ShowItemImage
		}
		if setting.EmptyStateText != "" {
			emptyStateText = setting.EmptyStateText
		}
	}

	listView, err := GetItemPriceListViewSetting(ctx)
	if err != nil {
		return nil, err
	}

	var fields []FieldSpec
	if listView != nil {
		fields = FieldsFromListView(ParseListViewColumns(listView.RawFields), listView.TotalFields)
	}
	if len(fields) == 0 && setting != nil {
		fields = fieldsFromCardSetting(setting)
	}
	if len(fields) == 0 {
		fields = defaults.Fields
	}

	fields = EnsurePrimaryFieldFirst(fields, MaxCardFields)
	fields = ForceWaitingQtyDisplay(fields)

	return &CardConfig{
		ShowItemImage:  showItemImage,
		EmptyStateText: emptyStateText,
		Fields:         fields,
	}, nil
}

// ParseListViewColumns decodes the raw column JSON; malformed input yields
// no columns rather than an error.
func ParseListViewColumns(raw string) []ListViewColumn {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var columns []ListViewColumn
	if err := json.Unmarshal([]byte(raw), &columns); err != nil {
		return nil
	}
	return columns
}

// FieldsFromListView maps the user's list view columns onto card fields:
// allow-list filtered, deduplicated, capped, and padded from the default
// set when the selection comes up short.
func FieldsFromListView(columns []ListViewColumn, totalFields int) []FieldSpec {
	if len(columns) == 0 {
		return nil
	}

	limit := totalFields
	if limit <= 0 || limit > MaxCardFields {
		limit = MaxCardFields
	}

	fields := make([]FieldSpec, 0, limit)
	seen := make(map[string]bool)

	for _, column := range columns {
		fieldname := strings.TrimSpace(column.Fieldname)
		if fieldname == "" || fieldname == "status_field" {
			continue
		}
		if excludedCardFields[fieldname] || seen[fieldname] {
			continue
		}

		override := &CardField{Label: column.Label}
		spec, ok := makeFieldSpec(fieldname, override)
		if !ok {
			continue
		}

		fields = append(fields, spec)
		seen[fieldname] = true
		if len(fields) >= limit {
			break
		}
	}

	// pad from the default ordering so sparse selections still fill the card
	if len(fields) < limit {
		for _, fallback := range DefaultCardFields() {
			if excludedCardFields[fallback.Fieldname] || seen[fallback.Fieldname] {
				continue
			}
			fields = append(fields, fallback)
			seen[fallback.Fieldname] = true
			if len(fields) >= limit {
				break
			}
		}
	}

	return fields
}

func fieldsFromCardSetting(setting *CardSetting) []FieldSpec {
	fields := make([]FieldSpec, 0, len(setting.Fields))
	for i := range setting.Fields {
		row := &setting.Fields[i]
		if row.Fieldname == "" {
			continue
		}
		spec, ok := makeFieldSpec(row.Fieldname, row)
		if !ok {
			continue
		}
		fields = append(fields, spec)
	}
	return fields
}

// EnsurePrimaryFieldFirst moves the primary price field to position 0. When
// it was trimmed out entirely, its default definition is inserted at the
// front and the tail evicted to respect the cap.
func EnsurePrimaryFieldFirst(fields []FieldSpec, limit int) []FieldSpec {
	for idx, field := range fields {
		if field.Fieldname == PrimaryPriceField {
			if idx != 0 {
				spec := fields[idx]
				fields = append(fields[:idx], fields[idx+1:]...)
				fields = append([]FieldSpec{spec}, fields...)
			}
			return fields
		}
	}

	spec, ok := makeFieldSpec(PrimaryPriceField, nil)
	if !ok {
		return fields
	}
	fields = append([]FieldSpec{spec}, fields...)
	for limit > 0 && len(fields) > limit {
		fields = fields[:len(fields)-1]
	}
	return fields
}

// ForceWaitingQtyDisplay makes the waiting quantity row full width and
// hidden when zero, appending it when it was not selected at all.
func ForceWaitingQtyDisplay(fields []FieldSpec) []FieldSpec {
	for idx := range fields {
		if fields[idx].Fieldname == WaitingQtyField {
			fields[idx].IsFullWidth = true
			fields[idx].HideIfZero = true
			return fields
		}
	}

	spec, ok := makeFieldSpec(WaitingQtyField, nil)
	if !ok {
		return fields
	}
	spec.IsFullWidth = true
	spec.HideIfZero = true
	return append(fields, spec)
}
