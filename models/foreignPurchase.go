package models

import (
	"context"
	"time"

	"github.com/apexcadcam/apex-item/utils"
	"github.com/shopspring/decimal"
)

// ForeignPurchaseInfo is the resolved "last foreign-currency purchase" view
// for an item: the per-unit rate and allocated charges expressed in the
// source document's own currency, plus the source reference.
type ForeignPurchaseInfo struct {
	Rate                decimal.Decimal `json:"rate"`
	Currency            string          `json:"currency"`
	BaseRate            decimal.Decimal `json:"base_rate"`
	ConversionRate      decimal.Decimal `json:"conversion_rate"`
	PurchaseDate        *time.Time      `json:"purchase_date"`
	VoucherType         VoucherType     `json:"voucher_type"`
	VoucherNo           string          `json:"voucher_no"`
	Supplier            string          `json:"supplier"`
	ApplicableCharges   decimal.Decimal `json:"applicable_charges"`
	LandedCostVoucherNo string          `json:"landed_cost_voucher_no"`
}

// purchaseCandidate couples a chosen purchase source with charges located in
// the company base currency.
type purchaseCandidate struct {
	source      *PurchaseSource
	chargesBase decimal.Decimal
	voucherNo   string
}

// purchaseSourceStrategy locates a candidate purchase for an item. A nil
// candidate with nil error means "nothing found, try the next strategy".
type purchaseSourceStrategy func(ctx context.Context, itemCode string) (*purchaseCandidate, error)

// resolutionOrder: allocation-linked purchase first, then the newest of the
// three purchase document types. The order is part of the contract; charge
// conversion correctness depends on the charges and rate coming from the
// same document whenever an allocation exists.
var resolutionOrder = []purchaseSourceStrategy{
	allocationLinkedSource,
	latestPurchaseDocumentSource,
}

// ResolveForeignPurchaseInfo finds the most recent qualifying purchase for
// an item and expresses rate and charges in that purchase's own currency.
// Returns (nil, nil) when no submitted purchase document mentions the item.
func ResolveForeignPurchaseInfo(ctx context.Context, itemCode string) (*ForeignPurchaseInfo, error) {
	if itemCode == "" {
		return nil, nil
	}

	var candidate *purchaseCandidate
	for _, strategy := range resolutionOrder {
		found, err := strategy(ctx, itemCode)
		if err != nil {
			return nil, err
		}
		if found != nil {
			candidate = found
			break
		}
	}
	if candidate == nil || candidate.source == nil {
		return nil, nil
	}

	companyCurrency := GetCompanyCurrency(ctx, candidate.source.Company)
	return buildForeignPurchaseInfo(candidate, companyCurrency), nil
}

// allocationLinkedSource starts from the item's newest landed-cost
// allocation and resolves the purchase document that allocation points at.
// Invoices win over receipts; among receipts the latest posting date wins.
func allocationLinkedSource(ctx context.Context, itemCode string) (*purchaseCandidate, error) {
	charge, err := LastLandedCostChargeForItem(ctx, itemCode)
	if err != nil {
		return nil, err
	}
	if charge == nil {
		return nil, nil
	}

	rows, err := ListLandedCostRowsForItem(ctx, charge.VoucherNo, itemCode)
	if err != nil {
		return nil, err
	}

	var chosen *PurchaseSource
	for _, row := range rows {
		source, err := GetPurchaseSource(ctx, row.ReceiptDocumentType, row.ReceiptDocumentNo, itemCode)
		if err != nil {
			return nil, err
		}
		if source == nil {
			continue
		}
		if source.VoucherType == VoucherTypePurchaseInvoice {
			chosen = source
			break
		}
		if chosen == nil || source.Date.After(chosen.Date) {
			chosen = source
		}
	}
	if chosen == nil {
		return nil, nil
	}

	return &purchaseCandidate{
		source:      chosen,
		chargesBase: charge.ApplicableCharges,
		voucherNo:   charge.VoucherNo,
	}, nil
}

// latestPurchaseDocumentSource picks the overall newest of the latest
// submitted invoice, receipt and order for the item, then looks for charges
// allocated against that specific document.
func latestPurchaseDocumentSource(ctx context.Context, itemCode string) (*purchaseCandidate, error) {
	invoice, err := LastPurchaseInvoiceForItem(ctx, itemCode)
	if err != nil {
		return nil, err
	}
	receipt, err := LastPurchaseReceiptForItem(ctx, itemCode)
	if err != nil {
		return nil, err
	}
	order, err := LastPurchaseOrderForItem(ctx, itemCode)
	if err != nil {
		return nil, err
	}

	chosen := pickLatestSource(invoice, receipt, order)
	if chosen == nil {
		return nil, nil
	}

	candidate := &purchaseCandidate{source: chosen}
	charge, err := LastLandedCostChargeForDocument(ctx, chosen.VoucherType, chosen.DocumentNo, itemCode)
	if err != nil {
		return nil, err
	}
	if charge != nil {
		candidate.chargesBase = charge.ApplicableCharges
		candidate.voucherNo = charge.VoucherNo
	}
	return candidate, nil
}

// pickLatestSource returns the newest non-nil source by document date. Ties
// go to the earlier entry in the invoice, receipt, order sequence, so a
// same-day invoice supersedes the receipt and both supersede the order.
func pickLatestSource(sources ...*PurchaseSource) *PurchaseSource {
	var chosen *PurchaseSource
	for _, source := range sources {
		if source == nil {
			continue
		}
		if chosen == nil || source.Date.After(chosen.Date) {
			chosen = source
		}
	}
	return chosen
}

// buildForeignPurchaseInfo converts the candidate's base-currency figures
// into the source document's own currency.
//
// Rate: baseRate/conversionFactor when the source is in the company
// currency; (baseRate/conversionRate)/conversionFactor otherwise. A zero or
// missing rate/factor yields zero, never an error.
//
// Charges: allocations are stored in the company currency; conversion uses
// the source document's OWN conversion rate, not a market rate, so charge
// and rate stay consistent with the exchange rate printed on the document.
func buildForeignPurchaseInfo(candidate *purchaseCandidate, companyCurrency string) *ForeignPurchaseInfo {
	source := candidate.source

	conversionRate := utils.DecimalOrOne(source.ConversionRate)
	conversionFactor := utils.DecimalOrOne(source.ConversionFactor)
	baseRate := source.BaseNetRate

	currency := source.Currency
	if currency == "" {
		currency = companyCurrency
	}

	var rate decimal.Decimal
	if currency == companyCurrency {
		rate = utils.SafeDiv(baseRate, conversionFactor)
	} else {
		rate = utils.SafeDiv(utils.SafeDiv(baseRate, conversionRate), conversionFactor)
	}

	charges := decimal.Zero
	if candidate.chargesBase.IsPositive() {
		if currency == companyCurrency {
			charges = candidate.chargesBase
		} else {
			charges = utils.SafeDiv(candidate.chargesBase, conversionRate)
		}
	}

	purchaseDate := source.Date
	return &ForeignPurchaseInfo{
		Rate:                rate,
		Currency:            currency,
		BaseRate:            utils.SafeDiv(baseRate, conversionFactor),
		ConversionRate:      conversionRate,
		PurchaseDate:        &purchaseDate,
		VoucherType:         source.VoucherType,
		VoucherNo:           source.DocumentNo,
		Supplier:            source.Supplier,
		ApplicableCharges:   charges,
		LandedCostVoucherNo: candidate.voucherNo,
	}
}
