package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseIdList(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  []int
	}{
		{"typed slice", []int{3, 1, 2}, []int{3, 1, 2}},
		{"json array string", "[1, 2, 3]", []int{1, 2, 3}},
		{"csv string", "4, 5,6", []int{4, 5, 6}},
		{"decoded json body", []any{float64(7), "8"}, []int{7, 8}},
		{"empty string", "   ", nil},
		{"garbage entries skipped", "9, x, 10", []int{9, 10}},
		{"nil", nil, nil},
	}

	for _, tc := range cases {
		got := ParseIdList(tc.input)
		if len(got) != len(tc.want) {
			t.Errorf("%s: ParseIdList(%v) = %v, want %v", tc.name, tc.input, got, tc.want)
			continue
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("%s: ParseIdList(%v) = %v, want %v", tc.name, tc.input, got, tc.want)
				break
			}
		}
	}
}

func TestSafeDiv(t *testing.T) {
	if got := SafeDiv(decimal.NewFromInt(10), decimal.NewFromInt(4)); !got.Equal(decimal.NewFromFloat(2.5)) {
		t.Errorf("SafeDiv(10, 4) = %s, want 2.5", got)
	}
	if got := SafeDiv(decimal.NewFromInt(10), decimal.Zero); !got.IsZero() {
		t.Errorf("SafeDiv(10, 0) = %s, want 0", got)
	}
}

func TestDecimalOrOne(t *testing.T) {
	if got := DecimalOrOne(decimal.Zero); !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("DecimalOrOne(0) = %s, want 1", got)
	}
	if got := DecimalOrOne(decimal.NewFromFloat(2.5)); !got.Equal(decimal.NewFromFloat(2.5)) {
		t.Errorf("DecimalOrOne(2.5) = %s, want 2.5", got)
	}
}
