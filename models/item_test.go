package models

import (
	"testing"
	"time"
)

func TestApplyRecommendedPrice_FixedAmount(t *testing.T) {
	item := &Item{
		ForeignPurchaseRate:              dec("100"),
		ForeignPurchaseApplicableCharges: dec("20"),
		ExpenseCalculationMethod:         ExpenseMethodFixedAmount,
		MarginProfitPercent:              dec("50"),
	}

	item.ApplyRecommendedPrice()

	// (100 + 20) * 1.5
	if !item.SalesPriceRecommended.Equal(dec("180")) {
		t.Fatalf("recommended = %s, want 180", item.SalesPriceRecommended)
	}
}

func TestApplyRecommendedPrice_Percentage(t *testing.T) {
	item := &Item{
		ForeignPurchaseRate:      dec("100"),
		ExpenseCalculationMethod: ExpenseMethodPercentage,
		ExpensePercentage:        dec("10"),
		MarginProfitPercent:      dec("50"),
	}

	item.ApplyRecommendedPrice()

	// (100 + 100*10%) * 1.5
	if !item.SalesPriceRecommended.Equal(dec("165")) {
		t.Fatalf("recommended = %s, want 165", item.SalesPriceRecommended)
	}
}

func TestApplyRecommendedPrice_ZeroRateLeavesPriceAlone(t *testing.T) {
	item := &Item{
		SalesPriceRecommended:    dec("999"),
		ExpenseCalculationMethod: ExpenseMethodPercentage,
		ExpensePercentage:        dec("10"),
		MarginProfitPercent:      dec("50"),
	}

	item.ApplyRecommendedPrice()

	if !item.SalesPriceRecommended.Equal(dec("999")) {
		t.Fatalf("recommended = %s, want untouched 999", item.SalesPriceRecommended)
	}
}

func TestApplyForeignPurchaseInfo_CopiesAndRecomputes(t *testing.T) {
	purchaseDate := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	item := &Item{
		ExpenseCalculationMethod: ExpenseMethodFixedAmount,
		MarginProfitPercent:      dec("25"),
	}

	item.ApplyForeignPurchaseInfo(&ForeignPurchaseInfo{
		Rate:                dec("80"),
		Currency:            "USD",
		PurchaseDate:        &purchaseDate,
		VoucherType:         VoucherTypePurchaseInvoice,
		VoucherNo:           "PI-0001",
		Supplier:            "Overseas Supplier",
		ApplicableCharges:   dec("20"),
		LandedCostVoucherNo: "LCV-0001",
	})

	if item.ForeignPurchaseVoucherNo != "PI-0001" || item.ForeignPurchaseCurrency != "USD" {
		t.Fatalf("source fields not copied: %+v", item)
	}
	// (80 + 20) * 1.25
	if !item.SalesPriceRecommended.Equal(dec("125")) {
		t.Fatalf("recommended = %s, want 125", item.SalesPriceRecommended)
	}
}

func TestApplyForeignPurchaseInfo_NilClearsDerivedFields(t *testing.T) {
	purchaseDate := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	item := &Item{
		ForeignPurchaseRate:       dec("80"),
		ForeignPurchaseCurrency:   "USD",
		ForeignPurchaseDate:       &purchaseDate,
		ForeignPurchaseVoucherNo:  "PI-0001",
		ForeignPurchaseSupplier:   "Overseas Supplier",
		ForeignPurchaseVoucherRef: "LCV-0001",
	}

	item.ApplyForeignPurchaseInfo(nil)

	if !item.ForeignPurchaseRate.IsZero() || item.ForeignPurchaseCurrency != "" ||
		item.ForeignPurchaseDate != nil || item.ForeignPurchaseVoucherNo != "" ||
		item.ForeignPurchaseSupplier != "" || item.ForeignPurchaseVoucherRef != "" {
		t.Fatalf("derived fields not cleared: %+v", item)
	}
}

func TestItemCardInfoBestImage(t *testing.T) {
	cases := []struct {
		name string
		info itemCardInfo
		want string
	}{
		{"primary wins", itemCardInfo{Image: "a.png", WebsiteImage: "b.png", Thumbnail: "c.png"}, "a.png"},
		{"website next", itemCardInfo{WebsiteImage: "b.png", Thumbnail: "c.png"}, "b.png"},
		{"thumbnail last", itemCardInfo{Thumbnail: "c.png"}, "c.png"},
		{"none", itemCardInfo{}, ""},
	}
	for _, tc := range cases {
		if got := tc.info.bestImage(); got != tc.want {
			t.Errorf("%s: bestImage() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

// Stock snapshot arithmetic: available is always actual minus reserved.
func TestSnapshotFromAggregates_AvailableIsActualMinusReserved(t *testing.T) {
	pairs := [][2]string{
		{"0", "0"},
		{"10", "3"},
		{"3", "10"},
		{"2.5", "0.75"},
		{"-4", "2"},
		{"1000000.1234", "999999.1234"},
	}
	for _, pair := range pairs {
		actual, reserved := dec(pair[0]), dec(pair[1])
		snapshot := SnapshotFromAggregates(actual, reserved, dec("7"), "Raw Material", "x.png")

		if !snapshot.AvailableQty.Equal(actual.Sub(reserved)) {
			t.Errorf("available = %s for actual=%s reserved=%s, want %s",
				snapshot.AvailableQty, actual, reserved, actual.Sub(reserved))
		}
		if !snapshot.WaitingQty.Equal(dec("7")) {
			t.Errorf("waiting = %s, want pass-through 7", snapshot.WaitingQty)
		}
	}
}
