package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/apexcadcam/apex-item/config"
	"github.com/apexcadcam/apex-item/models"
	"github.com/apexcadcam/apex-item/utils"
)

// RefreshItemPrice recomputes the stock snapshot for one item price row and
// persists it together with the resolved stock warehouse.
func RefreshItemPrice(ctx context.Context, id int) (*models.StockSnapshot, error) {
	logger := config.GetLogger()

	itemPrice, err := models.GetItemPrice(ctx, id)
	if err != nil {
		return nil, err
	}
	if itemPrice.ItemCode == "" {
		return nil, errors.New("item price has no item code")
	}

	warehouseCache := models.NewDefaultWarehouseCache()
	warehouseId := itemPrice.StockWarehouseId
	if warehouseId == nil {
		warehouseId = warehouseCache.Get(ctx, itemPrice.ItemCode)
	}

	snapshot := models.ComputeStockSnapshot(ctx, itemPrice.ItemCode, warehouseId)
	if err := models.UpdateItemPriceSnapshotColumns(ctx, id, snapshot, warehouseId); err != nil {
		config.LogError(logger, "itemPriceRefresh.go", "RefreshItemPrice", "UpdateItemPriceSnapshotColumns", id, err)
		return nil, err
	}
	return &snapshot, nil
}

// RefreshItemPrices refreshes a batch of rows identified by ids given as
// []int, a JSON array string or a comma-separated string. Per-row failures
// are logged and skipped; the count of refreshed rows is returned.
func RefreshItemPrices(ctx context.Context, names any) int {
	logger := config.GetLogger()

	updated := 0
	for _, id := range utils.ParseIdList(names) {
		if _, err := RefreshItemPrice(ctx, id); err != nil {
			config.LogError(logger, "itemPriceRefresh.go", "RefreshItemPrices", "RefreshItemPrice", id, err)
			continue
		}
		updated++
	}
	return updated
}

// RefreshItemPricesByFilter refreshes at most `limit` rows matching the
// filter, most recently modified first.
func RefreshItemPricesByFilter(ctx context.Context, filter models.ItemPriceFilter, limit int) (int, error) {
	if limit <= 0 {
		limit = 1000
	}
	ids, err := models.ListItemPriceIdsByFilter(ctx, filter, limit)
	if err != nil {
		return 0, err
	}
	return RefreshItemPrices(ctx, ids), nil
}

// RefreshItemPricesForItem refreshes every price row of one item. Snapshots
// are memoized per warehouse so rows sharing a warehouse hit the bins once,
// and rows without a stock warehouse get the item's default filled in.
func RefreshItemPricesForItem(ctx context.Context, itemCode string, warehouseId *int) error {
	logger := config.GetLogger()

	refs, err := models.ListItemPricesForItem(ctx, itemCode)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}

	warehouseCache := models.NewDefaultWarehouseCache()
	snapshots := make(map[int]models.StockSnapshot)

	snapshotFor := func(wid *int) models.StockSnapshot {
		key := 0
		if wid != nil {
			key = *wid
		}
		if snapshot, ok := snapshots[key]; ok {
			return snapshot
		}
		snapshot := models.ComputeStockSnapshot(ctx, itemCode, wid)
		snapshots[key] = snapshot
		return snapshot
	}

	for _, ref := range refs {
		if skipForWarehouse(ref.StockWarehouseId, warehouseId) {
			continue
		}
		rowWarehouse := ref.StockWarehouseId
		if rowWarehouse == nil {
			rowWarehouse = warehouseId
		}
		if rowWarehouse == nil {
			rowWarehouse = warehouseCache.Get(ctx, itemCode)
		}

		snapshot := snapshotFor(rowWarehouse)
		var fillWarehouse *int
		if ref.StockWarehouseId == nil {
			fillWarehouse = rowWarehouse
		}
		if err := models.UpdateItemPriceSnapshotColumns(ctx, ref.ID, snapshot, fillWarehouse); err != nil {
			config.LogError(logger, "itemPriceRefresh.go", "RefreshItemPricesForItem", "UpdateItemPriceSnapshotColumns", ref.ID, err)
		}
	}
	return nil
}

// skipForWarehouse drops price rows pinned to a different warehouse when the
// caller scopes the refresh to one; their bins were not part of the change.
func skipForWarehouse(rowWarehouse, scopeWarehouse *int) bool {
	return rowWarehouse != nil && scopeWarehouse != nil && *rowWarehouse != *scopeWarehouse
}

// StockRefreshPair identifies one (item, warehouse) combination whose price
// rows need a snapshot refresh.
type StockRefreshPair struct {
	ItemCode    string
	WarehouseId *int
}

func (p StockRefreshPair) key() string {
	if p.WarehouseId == nil {
		return p.ItemCode
	}
	return fmt.Sprintf("%s:%d", p.ItemCode, *p.WarehouseId)
}

// DedupStockRefreshPairs keeps the first occurrence of each pair, preserving
// order.
func DedupStockRefreshPairs(pairs []StockRefreshPair) []StockRefreshPair {
	seen := make(map[string]bool, len(pairs))
	out := pairs[:0]
	for _, pair := range pairs {
		if pair.ItemCode == "" || seen[pair.key()] {
			continue
		}
		seen[pair.key()] = true
		out = append(out, pair)
	}
	return out
}

var (
	stockRefreshOnce  sync.Once
	stockRefreshQueue chan StockRefreshPair

	pendingMu    sync.Mutex
	pendingPairs map[string]bool
)

// StartStockRefreshWorker launches the background goroutine draining the
// refresh queue. Safe to call more than once.
func StartStockRefreshWorker(ctx context.Context) {
	stockRefreshOnce.Do(func() {
		stockRefreshQueue = make(chan StockRefreshPair, 1024)
		pendingPairs = make(map[string]bool)
		go runStockRefreshWorker(ctx)
	})
}

func runStockRefreshWorker(ctx context.Context) {
	logger := config.GetLogger()
	for {
		select {
		case <-ctx.Done():
			return
		case pair := <-stockRefreshQueue:
			pendingMu.Lock()
			delete(pendingPairs, pair.key())
			pendingMu.Unlock()

			if err := RefreshItemPricesForItem(ctx, pair.ItemCode, pair.WarehouseId); err != nil {
				config.LogError(logger, "itemPriceRefresh.go", "runStockRefreshWorker", "RefreshItemPricesForItem", pair.ItemCode, err)
			}
		}
	}
}

// EnqueueStockRefresh schedules snapshot refreshes for the given pairs.
// Duplicates already waiting in the queue are dropped. Under RUN_INLINE (or
// before the worker is started) the refreshes run synchronously instead.
func EnqueueStockRefresh(ctx context.Context, pairs []StockRefreshPair) {
	logger := config.GetLogger()
	pairs = DedupStockRefreshPairs(pairs)

	if utils.RunInline(ctx) || stockRefreshQueue == nil {
		for _, pair := range pairs {
			if err := RefreshItemPricesForItem(ctx, pair.ItemCode, pair.WarehouseId); err != nil {
				config.LogError(logger, "itemPriceRefresh.go", "EnqueueStockRefresh", "RefreshItemPricesForItem", pair.ItemCode, err)
			}
		}
		return
	}

	for _, pair := range pairs {
		pendingMu.Lock()
		if pendingPairs[pair.key()] {
			pendingMu.Unlock()
			continue
		}
		pendingPairs[pair.key()] = true
		pendingMu.Unlock()

		select {
		case stockRefreshQueue <- pair:
		default:
			// queue full, run inline rather than drop the refresh
			pendingMu.Lock()
			delete(pendingPairs, pair.key())
			pendingMu.Unlock()
			if err := RefreshItemPricesForItem(ctx, pair.ItemCode, pair.WarehouseId); err != nil {
				config.LogError(logger, "itemPriceRefresh.go", "EnqueueStockRefresh", "RefreshItemPricesForItem", pair.ItemCode, err)
			}
		}
	}
}
