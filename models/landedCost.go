package models

import (
	"context"
	"time"

	"github.com/apexcadcam/apex-item/config"
	"github.com/shopspring/decimal"
)

// LandedCostVoucher distributes extra purchase charges (freight, duty) across
// receipt/invoice lines. Charges are stored in the company base currency.
type LandedCostVoucher struct {
	ID          int              `gorm:"primary_key" json:"id"`
	DocumentNo  string           `gorm:"uniqueIndex;size:140;not null" json:"document_no" binding:"required"`
	Company     string           `gorm:"size:100" json:"company"`
	PostingDate time.Time        `gorm:"index;not null" json:"posting_date" binding:"required"`
	Status      DocStatus        `gorm:"type:enum('Draft','Submitted','Cancelled');default:'Draft'" json:"status"`
	Items       []LandedCostItem `json:"items"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type LandedCostItem struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	LandedCostVoucherId int             `gorm:"index;not null" json:"landed_cost_voucher_id"`
	ItemCode            string          `gorm:"index;size:140;not null" json:"item_code"`
	ReceiptDocumentType VoucherType     `gorm:"size:30;not null" json:"receipt_document_type"`
	ReceiptDocumentNo   string          `gorm:"size:140;not null" json:"receipt_document_no"`
	ApplicableCharges   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"applicable_charges"`
}

// LandedCostCharge is one allocation row joined to its voucher header.
type LandedCostCharge struct {
	VoucherNo           string          `json:"voucher_no"`
	ReceiptDocumentType VoucherType     `json:"receipt_document_type"`
	ReceiptDocumentNo   string          `json:"receipt_document_no"`
	ApplicableCharges   decimal.Decimal `json:"applicable_charges"`
}

const landedCostChargeQuery = `
		SELECT lcv.document_no AS voucher_no,
			lci.receipt_document_type,
			lci.receipt_document_no,
			lci.applicable_charges
		FROM landed_cost_items lci
		INNER JOIN landed_cost_vouchers lcv ON lcv.id = lci.landed_cost_voucher_id`

// LastLandedCostChargeForItem finds the newest submitted allocation row for
// the item regardless of which purchase document it belongs to, ordered by
// voucher posting date then creation. Returns nil when none exists.
func LastLandedCostChargeForItem(ctx context.Context, itemCode string) (*LandedCostCharge, error) {
	db := config.GetDB()
	var charges []LandedCostCharge
	err := db.WithContext(ctx).Raw(landedCostChargeQuery+`
		WHERE lci.item_code = ? AND lcv.status = ?
		ORDER BY lcv.posting_date DESC, lcv.created_at DESC
		LIMIT 1`,
		itemCode, DocStatusSubmitted,
	).Scan(&charges).Error
	if err != nil {
		return nil, err
	}
	if len(charges) == 0 || charges[0].ApplicableCharges.IsZero() {
		return nil, nil
	}
	return &charges[0], nil
}

// LastLandedCostChargeForDocument finds the newest submitted allocation row
// for the item inside a specific purchase document. Falls back to the item's
// latest allocation anywhere when the document has none.
func LastLandedCostChargeForDocument(ctx context.Context, voucherType VoucherType, documentNo string, itemCode string) (*LandedCostCharge, error) {
	db := config.GetDB()
	var charges []LandedCostCharge
	err := db.WithContext(ctx).Raw(landedCostChargeQuery+`
		WHERE lci.receipt_document_type = ? AND lci.receipt_document_no = ?
			AND lci.item_code = ? AND lcv.status = ?
		ORDER BY lcv.posting_date DESC, lcv.created_at DESC
		LIMIT 1`,
		voucherType, documentNo, itemCode, DocStatusSubmitted,
	).Scan(&charges).Error
	if err != nil {
		return nil, err
	}
	if len(charges) > 0 && !charges[0].ApplicableCharges.IsZero() {
		return &charges[0], nil
	}
	return LastLandedCostChargeForItem(ctx, itemCode)
}

// ListLandedCostRowsForItem returns the allocation rows for an item inside
// one voucher, in row order.
func ListLandedCostRowsForItem(ctx context.Context, voucherNo string, itemCode string) ([]LandedCostCharge, error) {
	db := config.GetDB()
	var rows []LandedCostCharge
	err := db.WithContext(ctx).Raw(landedCostChargeQuery+`
		WHERE lcv.document_no = ? AND lci.item_code = ? AND lcv.status = ?
		ORDER BY lci.id`,
		voucherNo, itemCode, DocStatusSubmitted,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
