package models

// FieldSpec is one display field of the item price card.
type FieldSpec struct {
	Fieldname   string `json:"fieldname"`
	Label       string `json:"label"`
	CssClass    string `json:"css_class"`
	IsFullWidth bool   `json:"is_full_width"`
	HideIfZero  bool   `json:"hide_if_zero"`
}

// CardConfig is the full card configuration served to the UI.
type CardConfig struct {
	ShowItemImage  bool        `json:"show_item_image"`
	EmptyStateText string      `json:"empty_state_text"`
	Fields         []FieldSpec `json:"fields"`
}

const (
	// MaxCardFields caps how many fields the card renders.
	MaxCardFields = 6
	// PrimaryPriceField is pinned to position 0 whenever eligible.
	PrimaryPriceField = "price_list_rate"
	// WaitingQtyField is always rendered full width and hidden when zero.
	WaitingQtyField = "waiting_qty"
)

type fieldDefinition struct {
	Label      string
	CssClass   string
	HideIfZero bool
}

// fieldCatalog is the static definition set. A fieldname without an entry
// here is silently dropped from every card source.
var fieldCatalog = map[string]fieldDefinition{
	"price_list_rate":    {Label: "Price", CssClass: "price"},
	"currency":           {Label: "Currency", CssClass: "info"},
	"available_qty":      {Label: "Available", CssClass: "available"},
	"actual_qty":         {Label: "Actual", CssClass: "actual"},
	"reserved_qty":       {Label: "Reserved", CssClass: "reserved"},
	"waiting_qty":        {Label: "Waiting (PO)", CssClass: "waiting", HideIfZero: true},
	"brand":              {Label: "Brand", CssClass: "info"},
	"item_group":         {Label: "Group", CssClass: "info"},
	"item_code":          {Label: "Item Code", CssClass: "code"},
	"item_name":          {Label: "Item Name", CssClass: "name"},
	"uom":                {Label: "UOM", CssClass: "info"},
	"stock_warehouse_id": {Label: "Warehouse", CssClass: "info"},
}

// excludedCardFields never render on the compact card even when selected in
// a list view (the card shows the item name in its header already).
var excludedCardFields = map[string]bool{
	"item_name": true,
}

var defaultFieldOrder = []string{
	"price_list_rate",
	"available_qty",
	"actual_qty",
	"reserved_qty",
	"brand",
	"item_group",
	"waiting_qty",
}

// makeFieldSpec builds a FieldSpec from the catalog, honoring row overrides.
// Returns false when the fieldname has no static definition.
func makeFieldSpec(fieldname string, override *CardField) (FieldSpec, bool) {
	definition, ok := fieldCatalog[fieldname]
	if !ok {
		return FieldSpec{}, false
	}

	spec := FieldSpec{
		Fieldname:  fieldname,
		Label:      definition.Label,
		CssClass:   definition.CssClass,
		HideIfZero: definition.HideIfZero,
	}
	if override != nil {
		if override.Label != "" {
			spec.Label = override.Label
		}
		if override.CssClass != "" {
			spec.CssClass = override.CssClass
		}
		if override.HideIfZero != nil {
			spec.HideIfZero = *override.HideIfZero
		}
		if override.IsFullWidth != nil {
			spec.IsFullWidth = *override.IsFullWidth
		}
	}
	return spec, true
}

// DefaultCardFields returns the canonical ordered field set.
func DefaultCardFields() []FieldSpec {
	fields := make([]FieldSpec, 0, len(defaultFieldOrder))
	for _, fieldname := range defaultFieldOrder {
		spec, ok := makeFieldSpec(fieldname, nil)
		if !ok {
			continue
		}
		if fieldname == WaitingQtyField {
			spec.IsFullWidth = true
		}
		fields = append(fields, spec)
	}
	return fields
}

// DefaultCardConfig is the configuration used when no settings exist at all.
func DefaultCardConfig() CardConfig {
	return CardConfig{
		ShowItemImage:  false,
		EmptyStateText: "No matching items",
		Fields:         DefaultCardFields(),
	}
}
