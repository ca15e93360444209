package models

import (
	"context"
	"time"

	"github.com/apexcadcam/apex-item/config"
	"github.com/shopspring/decimal"
)

// Bin is the per-item-per-warehouse inventory aggregate. Reserved quantity is
// split across three columns the way the host inventory engine writes them;
// the snapshot calculator sums all three.
type Bin struct {
	ID                        int             `gorm:"primary_key" json:"id"`
	ItemCode                  string          `gorm:"index:idx_bin_item_warehouse;size:140;not null" json:"item_code"`
	WarehouseId               int             `gorm:"index:idx_bin_item_warehouse;not null" json:"warehouse_id"`
	ActualQty                 decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"actual_qty"`
	ReservedQty               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"reserved_qty"`
	ReservedQtyForProduction  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"reserved_qty_for_production"`
	ReservedQtyForSubContract decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"reserved_qty_for_sub_contract"`
	CreatedAt                 time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                 time.Time       `gorm:"autoUpdateTime;index" json:"updated_at"`
}

type binAggregate struct {
	ActualQty   decimal.Decimal
	ReservedQty decimal.Decimal
}

func aggregateBins(ctx context.Context, itemCode string, warehouseId *int) (binAggregate, error) {
	db := config.GetDB()

	var agg binAggregate
	dbCtx := db.WithContext(ctx).Model(&Bin{}).
		Select("COALESCE(SUM(actual_qty), 0) AS actual_qty, COALESCE(SUM(reserved_qty + reserved_qty_for_production + reserved_qty_for_sub_contract), 0) AS reserved_qty").
		Where("item_code = ?", itemCode)
	if warehouseId != nil {
		dbCtx = dbCtx.Where("warehouse_id = ?", *warehouseId)
	}
	if err := dbCtx.Scan(&agg).Error; err != nil {
		return binAggregate{}, err
	}
	return agg, nil
}

// BinChange identifies a bin touched recently. The scheduled reconcile sweep
// re-derives item price snapshots for these.
type BinChange struct {
	ItemCode    string `json:"item_code"`
	WarehouseId int    `json:"warehouse_id"`
}

// RecentBinChanges returns (item, warehouse) pairs for bins modified within
// the last `window`, newest first, capped at `limit`.
func RecentBinChanges(ctx context.Context, window time.Duration, limit int) ([]BinChange, error) {
	db := config.GetDB()

	var changes []BinChange
	err := db.WithContext(ctx).Model(&Bin{}).
		Select("item_code, warehouse_id").
		Where("updated_at >= ?", time.Now().Add(-window)).
		Order("updated_at desc").
		Limit(limit).
		Scan(&changes).Error
	if err != nil {
		return nil, err
	}
	return changes, nil
}
