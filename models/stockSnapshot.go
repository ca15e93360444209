package models

import (
	"context"

	"github.com/apexcadcam/apex-item/config"
	"github.com/shopspring/decimal"
)

// StockSnapshot is the derived stock view applied to Item Price rows.
type StockSnapshot struct {
	ActualQty    decimal.Decimal `json:"actual_qty"`
	AvailableQty decimal.Decimal `json:"available_qty"`
	ReservedQty  decimal.Decimal `json:"reserved_qty"`
	WaitingQty   decimal.Decimal `json:"waiting_qty"`
	ItemGroup    string          `json:"item_group"`
	ItemImage    string          `json:"item_image"`
}

// SnapshotFromAggregates assembles a snapshot from already-summed bin and
// purchase order figures. AvailableQty is always actual minus reserved.
func SnapshotFromAggregates(actual, reserved, waiting decimal.Decimal, itemGroup, itemImage string) StockSnapshot {
	return StockSnapshot{
		ActualQty:    actual,
		AvailableQty: actual.Sub(reserved),
		ReservedQty:  reserved,
		WaitingQty:   waiting,
		ItemGroup:    itemGroup,
		ItemImage:    itemImage,
	}
}

// ComputeStockSnapshot aggregates bins and open purchase orders for an item,
// scoped to the warehouse when one is given. Query failures are logged and
// produce the zero snapshot; callers never see an error.
func ComputeStockSnapshot(ctx context.Context, itemCode string, warehouseId *int) StockSnapshot {
	if itemCode == "" {
		return StockSnapshot{}
	}

	agg, err := aggregateBins(ctx, itemCode, warehouseId)
	if err != nil {
		config.LogError(config.GetLogger(), "models", "ComputeStockSnapshot", "aggregate bins", itemCode, err)
		return StockSnapshot{}
	}

	waiting, err := WaitingQtyForItem(ctx, itemCode, warehouseId)
	if err != nil {
		config.LogError(config.GetLogger(), "models", "ComputeStockSnapshot", "waiting qty", itemCode, err)
		return StockSnapshot{}
	}

	info, err := getItemCardInfo(ctx, itemCode)
	if err != nil {
		config.LogError(config.GetLogger(), "models", "ComputeStockSnapshot", "item info", itemCode, err)
		return StockSnapshot{}
	}

	return SnapshotFromAggregates(agg.ActualQty, agg.ReservedQty, waiting, info.ItemGroup, info.bestImage())
}
