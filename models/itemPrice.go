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

type ItemPrice struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ItemCode      string          `gorm:"index:idx_item_price_item_list;size:140;not null" json:"item_code" binding:"required"`
	PriceList     string          `gorm:"index:idx_item_price_item_list;size:140;not null" json:"price_list" binding:"required"`
	Currency      string          `gorm:"size:10" json:"currency"`
	Uom           string          `gorm:"size:50" json:"uom"`
	PriceListRate decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price_list_rate"`

	// derived stock fields, refreshed from bins and open purchase orders
	StockWarehouseId *int            `gorm:"default:null" json:"stock_warehouse_id"`
	ActualQty        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"actual_qty"`
	ReservedQty      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"reserved_qty"`
	AvailableQty     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"available_qty"`
	WaitingQty       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"waiting_qty"`
	ItemGroup        string          `gorm:"size:140" json:"item_group"`
	ItemImage        string          `gorm:"size:255" json:"item_image"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`
}

// ApplySnapshot copies a stock snapshot onto the in-memory row.
func (ip *ItemPrice) ApplySnapshot(snapshot StockSnapshot) {
	ip.ActualQty = snapshot.ActualQty
	ip.AvailableQty = snapshot.AvailableQty
	ip.ReservedQty = snapshot.ReservedQty
	ip.WaitingQty = snapshot.WaitingQty
	ip.ItemGroup = snapshot.ItemGroup
	ip.ItemImage = snapshot.ItemImage
}

func GetItemPrice(ctx context.Context, id int) (*ItemPrice, error) {
	if id <= 0 {
		return nil, errors.New("item price id is required")
	}
	db := config.GetDB()
	var itemPrice ItemPrice
	if err := db.WithContext(ctx).First(&itemPrice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &itemPrice, nil
}

// UpdateItemPriceSnapshotColumns writes the derived stock fields with
// UpdateColumns so the row's UpdatedAt is not bumped by background refreshes.
func UpdateItemPriceSnapshotColumns(ctx context.Context, id int, snapshot StockSnapshot, warehouseId *int) error {
	db := config.GetDB()

	values := map[string]interface{}{
		"actual_qty":    snapshot.ActualQty,
		"available_qty": snapshot.AvailableQty,
		"reserved_qty":  snapshot.ReservedQty,
		"waiting_qty":   snapshot.WaitingQty,
		"item_group":    snapshot.ItemGroup,
		"item_image":    snapshot.ItemImage,
	}
	if warehouseId != nil {
		values["stock_warehouse_id"] = *warehouseId
	}

	return db.WithContext(ctx).Model(&ItemPrice{}).
		Where("id = ?", id).
		UpdateColumns(values).Error
}

type ItemPriceRef struct {
	ID               int  `json:"id"`
	StockWarehouseId *int `json:"stock_warehouse_id"`
}

// ListItemPricesForItem returns the id + warehouse of every price row for an
// item code.
func ListItemPricesForItem(ctx context.Context, itemCode string) ([]ItemPriceRef, error) {
	db := config.GetDB()
	var refs []ItemPriceRef
	err := db.WithContext(ctx).Model(&ItemPrice{}).
		Select("id, stock_warehouse_id").
		Where("item_code = ?", itemCode).
		Scan(&refs).Error
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// ItemPriceFilter is the whitelisted filter surface for bulk refreshes.
type ItemPriceFilter struct {
	ItemCode  string `json:"item_code"`
	PriceList string `json:"price_list"`
	ItemGroup string `json:"item_group"`
}

// ListItemPriceIdsByFilter returns at most `limit` matching ids, most
// recently modified first.
func ListItemPriceIdsByFilter(ctx context.Context, filter ItemPriceFilter, limit int) ([]int, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Model(&ItemPrice{}).Select("id")
	if filter.ItemCode != "" {
		dbCtx = dbCtx.Where("item_code = ?", filter.ItemCode)
	}
	if filter.PriceList != "" {
		dbCtx = dbCtx.Where("price_list = ?", filter.PriceList)
	}
	if filter.ItemGroup != "" {
		dbCtx = dbCtx.Where("item_group = ?", filter.ItemGroup)
	}

	var ids []int
	err := dbCtx.Order("updated_at desc").Limit(limit).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListAllItemPriceIds returns every price row carrying an item code.
func ListAllItemPriceIds(ctx context.Context) ([]int, error) {
	db := config.GetDB()
	var ids []int
	err := db.WithContext(ctx).Model(&ItemPrice{}).
		Select("id").
		Where("item_code IS NOT NULL AND item_code <> ''").
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
