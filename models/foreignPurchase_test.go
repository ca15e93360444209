package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBuildForeignPurchaseInfo_CompanyCurrencyPassThrough(t *testing.T) {
	candidate := &purchaseCandidate{
		source: &PurchaseSource{
			VoucherType:      VoucherTypePurchaseInvoice,
			DocumentNo:       "PI-0001",
			Date:             time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Currency:         "MMK",
			ConversionRate:   decimal.NewFromInt(1),
			Supplier:         "Local Supplier",
			BaseNetRate:      dec("2400"),
			ConversionFactor: dec("12"),
		},
		chargesBase: dec("300"),
		voucherNo:   "LCV-0009",
	}

	info := buildForeignPurchaseInfo(candidate, "MMK")

	// company currency: rate is base rate per stock unit, no fx division
	if !info.Rate.Equal(dec("200")) {
		t.Fatalf("rate = %s, want 200", info.Rate)
	}
	if !info.ApplicableCharges.Equal(dec("300")) {
		t.Fatalf("charges = %s, want 300 untouched", info.ApplicableCharges)
	}
	if info.Currency != "MMK" {
		t.Fatalf("currency = %s, want MMK", info.Currency)
	}
}

func TestBuildForeignPurchaseInfo_ForeignCurrencyDividesByOwnRate(t *testing.T) {
	candidate := &purchaseCandidate{
		source: &PurchaseSource{
			VoucherType:      VoucherTypePurchaseReceipt,
			DocumentNo:       "PR-0042",
			Date:             time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
			Currency:         "USD",
			ConversionRate:   dec("2100"),
			Supplier:         "Overseas Supplier",
			BaseNetRate:      dec("4200"),
			ConversionFactor: decimal.NewFromInt(1),
		},
		chargesBase: dec("10500"),
	}

	info := buildForeignPurchaseInfo(candidate, "MMK")

	if !info.Rate.Equal(dec("2")) {
		t.Fatalf("rate = %s, want 2 (4200 base / 2100 own rate)", info.Rate)
	}
	// charges are stored in company currency and must be converted with the
	// document's own rate, not a market rate
	if !info.ApplicableCharges.Equal(dec("5")) {
		t.Fatalf("charges = %s, want 5 (10500 / 2100)", info.ApplicableCharges)
	}
	if info.VoucherNo != "PR-0042" {
		t.Fatalf("voucher no = %s, want PR-0042", info.VoucherNo)
	}
}

func TestBuildForeignPurchaseInfo_ZeroRateAndFactorSubstituteOne(t *testing.T) {
	candidate := &purchaseCandidate{
		source: &PurchaseSource{
			VoucherType:      VoucherTypePurchaseOrder,
			DocumentNo:       "PO-0100",
			Date:             time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			Currency:         "USD",
			ConversionRate:   decimal.Zero,
			BaseNetRate:      dec("150"),
			ConversionFactor: decimal.Zero,
		},
	}

	info := buildForeignPurchaseInfo(candidate, "MMK")

	if !info.Rate.Equal(dec("150")) {
		t.Fatalf("rate = %s, want 150 with rate and factor defaulting to 1", info.Rate)
	}
	if !info.ConversionRate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("conversion rate = %s, want 1", info.ConversionRate)
	}
	if !info.ApplicableCharges.IsZero() {
		t.Fatalf("charges = %s, want 0 when no allocation", info.ApplicableCharges)
	}
}

func TestBuildForeignPurchaseInfo_BlankCurrencyFallsBackToCompany(t *testing.T) {
	candidate := &purchaseCandidate{
		source: &PurchaseSource{
			VoucherType:      VoucherTypePurchaseInvoice,
			DocumentNo:       "PI-0002",
			Date:             time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			ConversionRate:   dec("2100"),
			BaseNetRate:      dec("500"),
			ConversionFactor: decimal.NewFromInt(1),
		},
	}

	info := buildForeignPurchaseInfo(candidate, "MMK")

	if info.Currency != "MMK" {
		t.Fatalf("currency = %s, want company fallback MMK", info.Currency)
	}
	// treated as company currency, so no division by the conversion rate
	if !info.Rate.Equal(dec("500")) {
		t.Fatalf("rate = %s, want 500", info.Rate)
	}
}

func TestPickLatestSource_NewestWinsAcrossTypes(t *testing.T) {
	invoice := &PurchaseSource{VoucherType: VoucherTypePurchaseInvoice, Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}
	receipt := &PurchaseSource{VoucherType: VoucherTypePurchaseReceipt, Date: time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)}
	order := &PurchaseSource{VoucherType: VoucherTypePurchaseOrder, Date: time.Date(2026, 4, 28, 0, 0, 0, 0, time.UTC)}

	chosen := pickLatestSource(invoice, receipt, order)
	if chosen != receipt {
		t.Fatalf("chose %v, want the receipt dated 2026-05-03", chosen.VoucherType)
	}
}

func TestPickLatestSource_SameDayInvoiceSupersedesReceipt(t *testing.T) {
	day := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	invoice := &PurchaseSource{VoucherType: VoucherTypePurchaseInvoice, Date: day}
	receipt := &PurchaseSource{VoucherType: VoucherTypePurchaseReceipt, Date: day}

	chosen := pickLatestSource(invoice, receipt, nil)
	if chosen != invoice {
		t.Fatalf("chose %v, want invoice on a date tie", chosen.VoucherType)
	}
}

func TestPickLatestSource_ThreeWayTieKeepsInvoice(t *testing.T) {
	day := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	invoice := &PurchaseSource{VoucherType: VoucherTypePurchaseInvoice, Date: day}
	receipt := &PurchaseSource{VoucherType: VoucherTypePurchaseReceipt, Date: day}
	order := &PurchaseSource{VoucherType: VoucherTypePurchaseOrder, Date: day}

	chosen := pickLatestSource(invoice, receipt, order)
	if chosen != invoice {
		t.Fatalf("chose %v, want invoice on a three-way date tie", chosen.VoucherType)
	}
}

func TestPickLatestSource_AllNil(t *testing.T) {
	if chosen := pickLatestSource(nil, nil, nil); chosen != nil {
		t.Fatalf("chose %v, want nil", chosen)
	}
}
