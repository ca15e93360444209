package workflow

import (
	"context"

	"github.com/apexcadcam/apex-item/config"
	"github.com/apexcadcam/apex-item/models"
)

// UpdateItemForeignPurchaseFields recomputes the derived purchase fields for
// every item touched by a submitted or cancelled purchase document. A failed
// item is logged and skipped so one bad row never blocks the document.
func UpdateItemForeignPurchaseFields(ctx context.Context, itemCodes []string) {
	logger := config.GetLogger()

	seen := make(map[string]bool, len(itemCodes))
	for _, itemCode := range itemCodes {
		if itemCode == "" || seen[itemCode] {
			continue
		}
		seen[itemCode] = true

		if err := refreshItemForeignPurchase(ctx, itemCode); err != nil {
			config.LogError(logger, "foreignPurchaseHooks.go", "UpdateItemForeignPurchaseFields", "refreshItemForeignPurchase", itemCode, err)
		}
	}
}

func refreshItemForeignPurchase(ctx context.Context, itemCode string) error {
	item, err := models.GetItemByCode(ctx, itemCode)
	if err != nil {
		return err
	}

	info, err := models.ResolveForeignPurchaseInfo(ctx, itemCode)
	if err != nil {
		return err
	}

	item.ApplyForeignPurchaseInfo(info)
	return models.UpdateItemForeignPurchaseColumns(ctx, item)
}

// ProcessPurchaseDocumentEvent handles the submit/cancel notification for a
// purchase document: derived purchase fields are recomputed for every item on
// the document, and the affected price rows get a stock snapshot refresh.
func ProcessPurchaseDocumentEvent(ctx context.Context, voucherType models.VoucherType, documentNo string) error {
	refs, err := models.ListPurchaseDocumentItems(ctx, voucherType, documentNo)
	if err != nil {
		return err
	}

	itemCodes := make([]string, 0, len(refs))
	pairs := make([]StockRefreshPair, 0, len(refs))
	for _, ref := range refs {
		itemCodes = append(itemCodes, ref.ItemCode)
		pairs = append(pairs, StockRefreshPair{ItemCode: ref.ItemCode, WarehouseId: ref.WarehouseId})
	}

	UpdateItemForeignPurchaseFields(ctx, itemCodes)
	EnqueueStockRefresh(ctx, pairs)
	return nil
}

// UpdateItemOnSave recomputes the derived purchase fields on the in-memory
// item before it is written. Disabled items are left alone.
func UpdateItemOnSave(ctx context.Context, item *models.Item) error {
	if item == nil || item.ItemCode == "" {
		return nil
	}
	if item.Disabled != nil && *item.Disabled {
		return nil
	}

	info, err := models.ResolveForeignPurchaseInfo(ctx, item.ItemCode)
	if err != nil {
		return err
	}
	item.ApplyForeignPurchaseInfo(info)
	return nil
}
