package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/apexcadcam/apex-item/config"
	"github.com/apexcadcam/apex-item/utils"
)

type Item struct {
	ID                 int    `gorm:"primary_key" json:"id"`
	ItemCode           string `gorm:"uniqueIndex;size:140;not null" json:"item_code" binding:"required"`
	ItemName           string `gorm:"size:255" json:"item_name"`
	ItemGroup          string `gorm:"size:140" json:"item_group"`
	Brand              string `gorm:"size:140" json:"brand"`
	Disabled           *bool  `gorm:"not null;default:false" json:"disabled"`
	IsStockItem        *bool  `gorm:"not null;default:true" json:"is_stock_item"`
	DefaultWarehouseId *int   `gorm:"default:null" json:"default_warehouse_id"`
	Image              string `gorm:"size:255" json:"image"`
	WebsiteImage       string `gorm:"size:255" json:"website_image"`
	Thumbnail          string `gorm:"size:255" json:"thumbnail"`

	// pricing inputs maintained by users
	MarginProfitPercent      decimal.Decimal          `gorm:"type:decimal(20,4);default:0" json:"margin_profit_percent"`
	ExpenseCalculationMethod ExpenseCalculationMethod `gorm:"type:enum('Fixed Amount','Percentage');default:'Fixed Amount'" json:"expense_calculation_method"`
	ExpensePercentage        decimal.Decimal          `gorm:"type:decimal(20,4);default:0" json:"expense_percentage"`

	// derived foreign-purchase fields, recomputed on save and on purchase
	// document submit/cancel
	ForeignPurchaseRate              decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"foreign_purchase_rate"`
	ForeignPurchaseCurrency          string          `gorm:"size:10" json:"foreign_purchase_currency"`
	ForeignPurchaseDate              *time.Time      `gorm:"default:null" json:"foreign_purchase_date"`
	ForeignPurchaseVoucherType       string          `gorm:"size:30" json:"foreign_purchase_voucher_type"`
	ForeignPurchaseVoucherNo         string          `gorm:"size:140" json:"foreign_purchase_voucher_no"`
	ForeignPurchaseSupplier          string          `gorm:"size:140" json:"foreign_purchase_supplier"`
	ForeignPurchaseApplicableCharges decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"foreign_purchase_applicable_charges"`
	ForeignPurchaseVoucherRef        string          `gorm:"size:140" json:"foreign_purchase_voucher_ref"`
	SalesPriceRecommended            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sales_price_recommended"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ApplyRecommendedPrice derives SalesPriceRecommended from the stored foreign
// purchase rate, the expense method and the profit margin. When the rate is
// zero the field is left untouched.
//
//	Fixed Amount: charges = ForeignPurchaseApplicableCharges
//	Percentage:   charges = rate * ExpensePercentage / 100
//	recommended = (rate + charges) * (1 + MarginProfitPercent / 100)
func (item *Item) ApplyRecommendedPrice() {
	if item.ForeignPurchaseRate.IsZero() {
		return
	}

	rate := item.ForeignPurchaseRate
	var charges decimal.Decimal
	if item.ExpenseCalculationMethod == ExpenseMethodPercentage {
		charges = rate.Mul(item.ExpensePercentage.Div(decimal.NewFromInt(100)))
	} else {
		charges = item.ForeignPurchaseApplicableCharges
	}

	totalCost := rate.Add(charges)
	margin := decimal.NewFromInt(1).Add(item.MarginProfitPercent.Div(decimal.NewFromInt(100)))
	item.SalesPriceRecommended = totalCost.Mul(margin)
}

func GetItemByCode(ctx context.Context, itemCode string) (*Item, error) {
	if itemCode == "" {
		return nil, errors.New("item code is required")
	}
	db := config.GetDB()
	var item Item
	if err := db.WithContext(ctx).Where("item_code = ?", itemCode).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &item, nil
}

type itemCardInfo struct {
	ItemGroup    string
	Image        string
	WebsiteImage string
	Thumbnail    string
}

// bestImage prefers the primary image, then the website image, then the
// thumbnail.
func (info itemCardInfo) bestImage() string {
	if info.Image != "" {
		return info.Image
	}
	if info.WebsiteImage != "" {
		return info.WebsiteImage
	}
	return info.Thumbnail
}

func getItemCardInfo(ctx context.Context, itemCode string) (itemCardInfo, error) {
	db := config.GetDB()
	var info itemCardInfo
	err := db.WithContext(ctx).Model(&Item{}).
		Select("item_group, image, website_image, thumbnail").
		Where("item_code = ?", itemCode).
		Scan(&info).Error
	return info, err
}

// UpdateItemForeignPurchaseColumns persists the derived purchase fields plus
// the recommended price for one item.
func UpdateItemForeignPurchaseColumns(ctx context.Context, item *Item) error {
	db := config.GetDB()
	return db.WithContext(ctx).Model(&Item{}).
		Where("item_code = ?", item.ItemCode).
		UpdateColumns(map[string]interface{}{
			"foreign_purchase_rate":               item.ForeignPurchaseRate,
			"foreign_purchase_currency":           item.ForeignPurchaseCurrency,
			"foreign_purchase_date":               item.ForeignPurchaseDate,
			"foreign_purchase_voucher_type":       item.ForeignPurchaseVoucherType,
			"foreign_purchase_voucher_no":         item.ForeignPurchaseVoucherNo,
			"foreign_purchase_supplier":           item.ForeignPurchaseSupplier,
			"foreign_purchase_applicable_charges": item.ForeignPurchaseApplicableCharges,
			"foreign_purchase_voucher_ref":        item.ForeignPurchaseVoucherRef,
			"sales_price_recommended":             item.SalesPriceRecommended,
		}).Error
}

// ApplyForeignPurchaseInfo copies resolver output onto the item (or clears
// the derived fields when info is nil) and recomputes the recommended price.
func (item *Item) ApplyForeignPurchaseInfo(info *ForeignPurchaseInfo) {
	if info == nil {
		item.ForeignPurchaseRate = decimal.Zero
		item.ForeignPurchaseCurrency = ""
		item.ForeignPurchaseDate = nil
		item.ForeignPurchaseVoucherType = ""
		item.ForeignPurchaseVoucherNo = ""
		item.ForeignPurchaseSupplier = ""
		item.ForeignPurchaseApplicableCharges = decimal.Zero
		item.ForeignPurchaseVoucherRef = ""
		return
	}
	item.ForeignPurchaseRate = info.Rate
	item.ForeignPurchaseCurrency = info.Currency
	item.ForeignPurchaseDate = info.PurchaseDate
	item.ForeignPurchaseVoucherType = string(info.VoucherType)
	item.ForeignPurchaseVoucherNo = info.VoucherNo
	item.ForeignPurchaseSupplier = info.Supplier
	item.ForeignPurchaseApplicableCharges = info.ApplicableCharges
	item.ForeignPurchaseVoucherRef = info.LandedCostVoucherNo
	item.ApplyRecommendedPrice()
}

// ListPurchasedItemCodes returns the distinct item codes that appear on any
// submitted purchase document, ordered by code. Used by the bulk
// foreign-purchase refresh.
func ListPurchasedItemCodes(ctx context.Context) ([]string, error) {
	db := config.GetDB()

	var itemCodes []string
	err := db.WithContext(ctx).Raw(`
		SELECT DISTINCT item_code FROM (
			SELECT pod.item_code
			FROM purchase_order_details pod
			INNER JOIN purchase_orders po ON po.id = pod.purchase_order_id
			WHERE po.status = ?
			UNION
			SELECT prd.item_code
			FROM purchase_receipt_details prd
			INNER JOIN purchase_receipts pr ON pr.id = prd.purchase_receipt_id
			WHERE pr.status = ?
			UNION
			SELECT pid.item_code
			FROM purchase_invoice_details pid
			INNER JOIN purchase_invoices pi ON pi.id = pid.purchase_invoice_id
			WHERE pi.status = ?
		) AS purchased
		WHERE item_code IS NOT NULL AND item_code <> ''
		ORDER BY item_code`,
		DocStatusSubmitted, DocStatusSubmitted, DocStatusSubmitted,
	).Scan(&itemCodes).Error
	if err != nil {
		return nil, err
	}
	return itemCodes, nil
}

// ListActiveStockItemCodes returns enabled stock items, for install-time
// backfills.
func ListActiveStockItemCodes(ctx context.Context) ([]string, error) {
	db := config.GetDB()
	var itemCodes []string
	err := db.WithContext(ctx).Model(&Item{}).
		Select("item_code").
		Where("is_stock_item = ? AND disabled = ?", true, false).
		Order("item_code").
		Scan(&itemCodes).Error
	if err != nil {
		return nil, err
	}
	return itemCodes, nil
}
