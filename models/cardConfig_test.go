package models

import (
	"testing"
)

func fieldnames(fields []FieldSpec) []string {
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Fieldname
	}
	return names
}

func assertFieldOrder(t *testing.T, fields []FieldSpec, want []string) {
	t.Helper()
	got := fieldnames(fields)
	if len(got) != len(want) {
		t.Fatalf("fields = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fields = %v, want %v", got, want)
		}
	}
}

func TestFieldsFromListView_FiltersDedupsAndCaps(t *testing.T) {
	columns := []ListViewColumn{
		{Fieldname: "price_list_rate"},
		{Fieldname: "item_name"},       // excluded from cards
		{Fieldname: "made_up_field"},   // unknown, dropped silently
		{Fieldname: "actual_qty"},
		{Fieldname: "actual_qty"},      // duplicate
		{Fieldname: "available_qty"},
		{Fieldname: "reserved_qty"},
		{Fieldname: "waiting_qty"},
		{Fieldname: "item_group"},
		{Fieldname: "currency"},
	}

	fields := FieldsFromListView(columns, 0)

	if len(fields) != MaxCardFields {
		t.Fatalf("got %d fields, want cap %d", len(fields), MaxCardFields)
	}
	assertFieldOrder(t, fields, []string{
		"price_list_rate", "actual_qty", "available_qty", "reserved_qty", "waiting_qty", "item_group",
	})
}

func TestFieldsFromListView_PadsSparseSelectionFromDefaults(t *testing.T) {
	columns := []ListViewColumn{{Fieldname: "reserved_qty"}}

	fields := FieldsFromListView(columns, 4)

	if len(fields) != 4 {
		t.Fatalf("got %d fields, want padded to 4", len(fields))
	}
	if fields[0].Fieldname != "reserved_qty" {
		t.Fatalf("first field = %s, want the user's selection first", fields[0].Fieldname)
	}
	seen := map[string]bool{}
	for _, field := range fields {
		if seen[field.Fieldname] {
			t.Fatalf("duplicate %s after padding", field.Fieldname)
		}
		seen[field.Fieldname] = true
	}
}

func TestFieldsFromListView_LabelOverrideKept(t *testing.T) {
	columns := []ListViewColumn{{Fieldname: "price_list_rate", Label: "Retail"}}

	fields := FieldsFromListView(columns, 1)

	if len(fields) != 1 || fields[0].Label != "Retail" {
		t.Fatalf("fields = %+v, want single field labeled Retail", fields)
	}
}

func TestFieldsFromListView_TotalFieldsClamped(t *testing.T) {
	columns := make([]ListViewColumn, 0, len(defaultFieldOrder))
	for _, name := range defaultFieldOrder {
		columns = append(columns, ListViewColumn{Fieldname: name})
	}

	fields := FieldsFromListView(columns, 99)
	if len(fields) > MaxCardFields {
		t.Fatalf("got %d fields, want at most %d", len(fields), MaxCardFields)
	}
}

func TestEnsurePrimaryFieldFirst_MovesExistingToFront(t *testing.T) {
	fields := FieldsFromListView([]ListViewColumn{
		{Fieldname: "actual_qty"},
		{Fieldname: "available_qty"},
		{Fieldname: "price_list_rate"},
	}, 3)

	fields = EnsurePrimaryFieldFirst(fields, MaxCardFields)

	assertFieldOrder(t, fields, []string{"price_list_rate", "actual_qty", "available_qty"})
}

func TestEnsurePrimaryFieldFirst_InsertsAndEvictsTailWhenMissing(t *testing.T) {
	columns := []ListViewColumn{
		{Fieldname: "actual_qty"},
		{Fieldname: "available_qty"},
		{Fieldname: "reserved_qty"},
		{Fieldname: "waiting_qty"},
		{Fieldname: "item_group"},
		{Fieldname: "currency"},
	}
	fields := FieldsFromListView(columns, MaxCardFields)
	if len(fields) != MaxCardFields {
		t.Fatalf("setup: got %d fields", len(fields))
	}

	fields = EnsurePrimaryFieldFirst(fields, MaxCardFields)

	if len(fields) != MaxCardFields {
		t.Fatalf("got %d fields after insert, want cap held at %d", len(fields), MaxCardFields)
	}
	if fields[0].Fieldname != PrimaryPriceField {
		t.Fatalf("first field = %s, want %s", fields[0].Fieldname, PrimaryPriceField)
	}
	// the last selected field made way for the inserted primary field
	for _, field := range fields {
		if field.Fieldname == "currency" {
			t.Fatalf("tail field survived the eviction: %v", fieldnames(fields))
		}
	}
}

func TestForceWaitingQtyDisplay_OverridesSelectedRow(t *testing.T) {
	fields := FieldsFromListView([]ListViewColumn{
		{Fieldname: "price_list_rate"},
		{Fieldname: "waiting_qty"},
	}, 2)

	fields = ForceWaitingQtyDisplay(fields)

	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2 (no duplicate appended)", len(fields))
	}
	waiting := fields[1]
	if !waiting.IsFullWidth || !waiting.HideIfZero {
		t.Fatalf("waiting qty = %+v, want full width and hide-if-zero", waiting)
	}
}

func TestForceWaitingQtyDisplay_AppendsWhenAbsent(t *testing.T) {
	fields := FieldsFromListView([]ListViewColumn{{Fieldname: "price_list_rate"}}, 1)

	fields = ForceWaitingQtyDisplay(fields)

	last := fields[len(fields)-1]
	if last.Fieldname != WaitingQtyField || !last.IsFullWidth || !last.HideIfZero {
		t.Fatalf("appended waiting qty = %+v", last)
	}
}

func TestCardFieldPipeline_Idempotent(t *testing.T) {
	columns := []ListViewColumn{
		{Fieldname: "actual_qty"},
		{Fieldname: "available_qty"},
		{Fieldname: "item_group"},
	}

	once := ForceWaitingQtyDisplay(EnsurePrimaryFieldFirst(FieldsFromListView(columns, MaxCardFields), MaxCardFields))
	twice := ForceWaitingQtyDisplay(EnsurePrimaryFieldFirst(once, MaxCardFields))

	assertFieldOrder(t, twice, fieldnames(once))
	if len(twice) > MaxCardFields+1 {
		t.Fatalf("pipeline grew the field list: %v", fieldnames(twice))
	}
}

func TestDefaultCardConfig(t *testing.T) {
	cardConfig := DefaultCardConfig()

	if len(cardConfig.Fields) == 0 {
		t.Fatal("default config has no fields")
	}
	if cardConfig.Fields[0].Fieldname != PrimaryPriceField {
		t.Fatalf("first default field = %s, want %s", cardConfig.Fields[0].Fieldname, PrimaryPriceField)
	}
	if cardConfig.EmptyStateText == "" {
		t.Fatal("empty state text missing")
	}
}

func TestParseListViewColumns_MalformedYieldsNone(t *testing.T) {
	if cols := ParseListViewColumns("{not json"); cols != nil {
		t.Fatalf("got %v, want nil for malformed input", cols)
	}
	if cols := ParseListViewColumns(""); cols != nil {
		t.Fatalf("got %v, want nil for empty input", cols)
	}
	cols := ParseListViewColumns(`[{"fieldname":"actual_qty","label":"On Hand"}]`)
	if len(cols) != 1 || cols[0].Fieldname != "actual_qty" || cols[0].Label != "On Hand" {
		t.Fatalf("got %v", cols)
	}
}
