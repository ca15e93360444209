package models

import (
	"context"
	"errors"
	"time"

	"github.com/apexcadcam/apex-item/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseOrder struct {
	ID              int                   `gorm:"primary_key" json:"id"`
	DocumentNo      string                `gorm:"uniqueIndex;size:140;not null" json:"document_no" binding:"required"`
	Supplier        string                `gorm:"index;size:140;not null" json:"supplier" binding:"required"`
	Company         string                `gorm:"size:100;not null" json:"company"`
	Currency        string                `gorm:"size:10;not null" json:"currency"`
	ConversionRate  decimal.Decimal       `gorm:"type:decimal(20,6);default:1" json:"conversion_rate"`
	TransactionDate time.Time             `gorm:"index;not null" json:"transaction_date" binding:"required"`
	Status          DocStatus             `gorm:"type:enum('Draft','Submitted','Cancelled');default:'Draft'" json:"status"`
	Details         []PurchaseOrderDetail `json:"details"`
	CreatedAt       time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseOrderDetail struct {
	ID               int             `gorm:"primary_key" json:"id"`
	PurchaseOrderId  int             `gorm:"index;not null" json:"purchase_order_id"`
	ItemCode         string          `gorm:"index;size:140;not null" json:"item_code"`
	WarehouseId      *int            `gorm:"default:null" json:"warehouse_id"`
	Qty              decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	ReceivedQty      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"received_qty"`
	BaseNetRate      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_net_rate"`
	ConversionFactor decimal.Decimal `gorm:"type:decimal(20,6);default:1" json:"conversion_factor"`
}

type PurchaseReceipt struct {
	ID             int                     `gorm:"primary_key" json:"id"`
	DocumentNo     string                  `gorm:"uniqueIndex;size:140;not null" json:"document_no" binding:"required"`
	Supplier       string                  `gorm:"index;size:140;not null" json:"supplier" binding:"required"`
	Company        string                  `gorm:"size:100;not null" json:"company"`
	Currency       string                  `gorm:"size:10;not null" json:"currency"`
	ConversionRate decimal.Decimal         `gorm:"type:decimal(20,6);default:1" json:"conversion_rate"`
	PostingDate    time.Time               `gorm:"index;not null" json:"posting_date" binding:"required"`
	Status         DocStatus               `gorm:"type:enum('Draft','Submitted','Cancelled');default:'Draft'" json:"status"`
	Details        []PurchaseReceiptDetail `json:"details"`
	CreatedAt      time.Time               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseReceiptDetail struct {
	ID                int             `gorm:"primary_key" json:"id"`
	PurchaseReceiptId int             `gorm:"index;not null" json:"purchase_receipt_id"`
	ItemCode          string          `gorm:"index;size:140;not null" json:"item_code"`
	WarehouseId       *int            `gorm:"default:null" json:"warehouse_id"`
	Qty               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	BaseNetRate       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_net_rate"`
	ConversionFactor  decimal.Decimal `gorm:"type:decimal(20,6);default:1" json:"conversion_factor"`
}

type PurchaseInvoice struct {
	ID             int                     `gorm:"primary_key" json:"id"`
	DocumentNo     string                  `gorm:"uniqueIndex;size:140;not null" json:"document_no" binding:"required"`
	Supplier       string                  `gorm:"index;size:140;not null" json:"supplier" binding:"required"`
	Company        string                  `gorm:"size:100;not null" json:"company"`
	Currency       string                  `gorm:"size:10;not null" json:"currency"`
	ConversionRate decimal.Decimal         `gorm:"type:decimal(20,6);default:1" json:"conversion_rate"`
	PostingDate    time.Time               `gorm:"index;not null" json:"posting_date" binding:"required"`
	Status         DocStatus               `gorm:"type:enum('Draft','Submitted','Cancelled');default:'Draft'" json:"status"`
	Details        []PurchaseInvoiceDetail `json:"details"`
	CreatedAt      time.Time               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseInvoiceDetail struct {
	ID                int             `gorm:"primary_key" json:"id"`
	PurchaseInvoiceId int             `gorm:"index;not null" json:"purchase_invoice_id"`
	ItemCode          string          `gorm:"index;size:140;not null" json:"item_code"`
	WarehouseId       *int            `gorm:"default:null" json:"warehouse_id"`
	Qty               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	BaseNetRate       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_net_rate"`
	ConversionFactor  decimal.Decimal `gorm:"type:decimal(20,6);default:1" json:"conversion_factor"`
}

// PurchaseSource is the typed snapshot of one purchase document line joined
// to its header, built at the data-access boundary so the resolver never
// touches heterogeneous record shapes.
type PurchaseSource struct {
	VoucherType      VoucherType     `json:"voucher_type"`
	DocumentNo       string          `json:"document_no"`
	Date             time.Time       `json:"date"`
	Currency         string          `json:"currency"`
	ConversionRate   decimal.Decimal `json:"conversion_rate"`
	Supplier         string          `json:"supplier"`
	Company          string          `json:"company"`
	BaseNetRate      decimal.Decimal `json:"base_net_rate"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
}

func scanPurchaseSource(dbCtx *gorm.DB, voucherType VoucherType) (*PurchaseSource, error) {
	var sources []PurchaseSource
	if err := dbCtx.Limit(1).Scan(&sources).Error; err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, nil
	}
	source := sources[0]
	source.VoucherType = voucherType
	return &source, nil
}

// LastPurchaseInvoiceForItem returns the newest submitted purchase invoice
// line for the item, by posting date then creation, or nil.
func LastPurchaseInvoiceForItem(ctx context.Context, itemCode string) (*PurchaseSource, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&PurchaseInvoice{}).
		Select("purchase_invoices.document_no, purchase_invoices.posting_date AS date, purchase_invoices.currency, purchase_invoices.conversion_rate, purchase_invoices.supplier, purchase_invoices.company, purchase_invoice_details.base_net_rate, purchase_invoice_details.conversion_factor").
		Joins("INNER JOIN purchase_invoice_details ON purchase_invoice_details.purchase_invoice_id = purchase_invoices.id").
		Where("purchase_invoice_details.item_code = ? AND purchase_invoices.status = ?", itemCode, DocStatusSubmitted).
		Order("purchase_invoices.posting_date desc, purchase_invoices.created_at desc")
	return scanPurchaseSource(dbCtx, VoucherTypePurchaseInvoice)
}

// LastPurchaseReceiptForItem returns the newest submitted purchase receipt
// line for the item, or nil.
func LastPurchaseReceiptForItem(ctx context.Context, itemCode string) (*PurchaseSource, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&PurchaseReceipt{}).
		Select("purchase_receipts.document_no, purchase_receipts.posting_date AS date, purchase_receipts.currency, purchase_receipts.conversion_rate, purchase_receipts.supplier, purchase_receipts.company, purchase_receipt_details.base_net_rate, purchase_receipt_details.conversion_factor").
		Joins("INNER JOIN purchase_receipt_details ON purchase_receipt_details.purchase_receipt_id = purchase_receipts.id").
		Where("purchase_receipt_details.item_code = ? AND purchase_receipts.status = ?", itemCode, DocStatusSubmitted).
		Order("purchase_receipts.posting_date desc, purchase_receipts.created_at desc")
	return scanPurchaseSource(dbCtx, VoucherTypePurchaseReceipt)
}

// LastPurchaseOrderForItem returns the newest submitted purchase order line
// for the item, or nil.
func LastPurchaseOrderForItem(ctx context.Context, itemCode string) (*PurchaseSource, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&PurchaseOrder{}).
		Select("purchase_orders.document_no, purchase_orders.transaction_date AS date, purchase_orders.currency, purchase_orders.conversion_rate, purchase_orders.supplier, purchase_orders.company, purchase_order_details.base_net_rate, purchase_order_details.conversion_factor").
		Joins("INNER JOIN purchase_order_details ON purchase_order_details.purchase_order_id = purchase_orders.id").
		Where("purchase_order_details.item_code = ? AND purchase_orders.status = ?", itemCode, DocStatusSubmitted).
		Order("purchase_orders.transaction_date desc, purchase_orders.created_at desc")
	return scanPurchaseSource(dbCtx, VoucherTypePurchaseOrder)
}

// GetPurchaseSource fetches one named receipt/invoice line for an item. Used
// to resolve the document a landed-cost row points at. Purchase orders never
// appear in landed-cost allocations.
func GetPurchaseSource(ctx context.Context, voucherType VoucherType, documentNo string, itemCode string) (*PurchaseSource, error) {
	db := config.GetDB()
	switch voucherType {
	case VoucherTypePurchaseInvoice:
		dbCtx := db.WithContext(ctx).Model(&PurchaseInvoice{}).
			Select("purchase_invoices.document_no, purchase_invoices.posting_date AS date, purchase_invoices.currency, purchase_invoices.conversion_rate, purchase_invoices.supplier, purchase_invoices.company, purchase_invoice_details.base_net_rate, purchase_invoice_details.conversion_factor").
			Joins("INNER JOIN purchase_invoice_details ON purchase_invoice_details.purchase_invoice_id = purchase_invoices.id").
			Where("purchase_invoices.document_no = ? AND purchase_invoice_details.item_code = ? AND purchase_invoices.status = ?",
				documentNo, itemCode, DocStatusSubmitted)
		return scanPurchaseSource(dbCtx, VoucherTypePurchaseInvoice)
	case VoucherTypePurchaseReceipt:
		dbCtx := db.WithContext(ctx).Model(&PurchaseReceipt{}).
			Select("purchase_receipts.document_no, purchase_receipts.posting_date AS date, purchase_receipts.currency, purchase_receipts.conversion_rate, purchase_receipts.supplier, purchase_receipts.company, purchase_receipt_details.base_net_rate, purchase_receipt_details.conversion_factor").
			Joins("INNER JOIN purchase_receipt_details ON purchase_receipt_details.purchase_receipt_id = purchase_receipts.id").
			Where("purchase_receipts.document_no = ? AND purchase_receipt_details.item_code = ? AND purchase_receipts.status = ?",
				documentNo, itemCode, DocStatusSubmitted)
		return scanPurchaseSource(dbCtx, VoucherTypePurchaseReceipt)
	}
	return nil, nil
}

// WaitingQtyForItem sums (qty - received_qty) over submitted, not fully
// received purchase order lines, scoped to a warehouse when given.
func WaitingQtyForItem(ctx context.Context, itemCode string, warehouseId *int) (decimal.Decimal, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Model(&PurchaseOrder{}).
		Select("COALESCE(SUM(purchase_order_details.qty - purchase_order_details.received_qty), 0)").
		Joins("INNER JOIN purchase_order_details ON purchase_order_details.purchase_order_id = purchase_orders.id").
		Where("purchase_order_details.item_code = ? AND purchase_orders.status = ?", itemCode, DocStatusSubmitted).
		Where("purchase_order_details.qty > purchase_order_details.received_qty")
	if warehouseId != nil {
		dbCtx = dbCtx.Where("purchase_order_details.warehouse_id = ?", *warehouseId)
	}

	var waiting decimal.Decimal
	if err := dbCtx.Scan(&waiting).Error; err != nil {
		return decimal.Zero, err
	}
	return waiting, nil
}

// DocumentItemRef is one detail line reduced to the pair the refresh hooks
// care about.
type DocumentItemRef struct {
	ItemCode    string `json:"item_code"`
	WarehouseId *int   `json:"warehouse_id"`
}

// ListPurchaseDocumentItems returns the item/warehouse pairs on one purchase
// document, whatever its status.
func ListPurchaseDocumentItems(ctx context.Context, voucherType VoucherType, documentNo string) ([]DocumentItemRef, error) {
	db := config.GetDB()

	var refs []DocumentItemRef
	var err error
	switch voucherType {
	case VoucherTypePurchaseOrder:
		err = db.WithContext(ctx).Model(&PurchaseOrderDetail{}).
			Select("purchase_order_details.item_code, purchase_order_details.warehouse_id").
			Joins("INNER JOIN purchase_orders ON purchase_orders.id = purchase_order_details.purchase_order_id").
			Where("purchase_orders.document_no = ?", documentNo).
			Scan(&refs).Error
	case VoucherTypePurchaseReceipt:
		err = db.WithContext(ctx).Model(&PurchaseReceiptDetail{}).
			Select("purchase_receipt_details.item_code, purchase_receipt_details.warehouse_id").
			Joins("INNER JOIN purchase_receipts ON purchase_receipts.id = purchase_receipt_details.purchase_receipt_id").
			Where("purchase_receipts.document_no = ?", documentNo).
			Scan(&refs).Error
	case VoucherTypePurchaseInvoice:
		err = db.WithContext(ctx).Model(&PurchaseInvoiceDetail{}).
			Select("purchase_invoice_details.item_code, purchase_invoice_details.warehouse_id").
			Joins("INNER JOIN purchase_invoices ON purchase_invoices.id = purchase_invoice_details.purchase_invoice_id").
			Where("purchase_invoices.document_no = ?", documentNo).
			Scan(&refs).Error
	default:
		return nil, errors.New("unsupported voucher type: " + string(voucherType))
	}
	if err != nil {
		return nil, err
	}
	return refs, nil
}
