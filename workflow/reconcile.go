package workflow

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/apexcadcam/apex-item/config"
	"github.com/apexcadcam/apex-item/models"
)

const reconcileBinLimit = 500

func reconcileWindow() time.Duration {
	if raw := os.Getenv("RECONCILE_WINDOW_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return 15 * time.Minute
}

func reconcileInterval() time.Duration {
	if raw := os.Getenv("RECONCILE_INTERVAL_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return 15 * time.Minute
}

// ReconcileRecentBinChanges sweeps bins touched within the reconcile window
// and re-derives the snapshots of the item prices they back. It never
// returns an error: reconciliation is a safety net and the next sweep picks
// up whatever this one missed.
func ReconcileRecentBinChanges(ctx context.Context) {
	logger := config.GetLogger()
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logrus.Fields{"field": "reconcile", "panic": r}).Error("bin reconcile panicked")
		}
	}()

	changes, err := models.RecentBinChanges(ctx, reconcileWindow(), reconcileBinLimit)
	if err != nil {
		config.LogError(logger, "reconcile.go", "ReconcileRecentBinChanges", "RecentBinChanges", nil, err)
		return
	}
	if len(changes) == 0 {
		return
	}

	pairs := make([]StockRefreshPair, 0, len(changes))
	for _, change := range changes {
		warehouseId := change.WarehouseId
		pairs = append(pairs, StockRefreshPair{ItemCode: change.ItemCode, WarehouseId: &warehouseId})
	}
	pairs = DedupStockRefreshPairs(pairs)

	for _, pair := range pairs {
		if err := RefreshItemPricesForItem(ctx, pair.ItemCode, pair.WarehouseId); err != nil {
			config.LogError(logger, "reconcile.go", "ReconcileRecentBinChanges", "RefreshItemPricesForItem", pair.ItemCode, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"field": "reconcile",
		"pairs": len(pairs),
	}).Info("bin reconcile sweep finished")
}

// StartReconcileScheduler runs the reconcile sweep on a fixed interval until
// the context is cancelled.
func StartReconcileScheduler(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(reconcileInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ReconcileRecentBinChanges(ctx)
			}
		}
	}()
}
