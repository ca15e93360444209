package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"

	"github.com/apexcadcam/apex-item/config"
	"github.com/apexcadcam/apex-item/models"
	"github.com/apexcadcam/apex-item/utils"
)

const bulkBatchSize = 50

// BulkJobResult is the summary returned by the bulk refresh jobs.
type BulkJobResult struct {
	Success bool   `json:"success"`
	Updated int    `json:"updated"`
	Failed  int    `json:"failed"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// obtainBulkJobLock guards a bulk job with a redis lock so only one instance
// runs at a time. The caller must release the returned lock.
func obtainBulkJobLock(ctx context.Context, jobName string) (*redislock.Lock, error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		config.LogError(logger, "bulkUpdate.go", "obtainBulkJobLock", "Redis lock not initialized", jobName, errors.New("redis lock is nil"))
		return nil, errors.New("service not ready (redis lock not initialized)")
	}

	lock, err := locker.Obtain(ctx, fmt.Sprintf("bulk_job:%s", jobName), 30*time.Minute, nil)
	if err == redislock.ErrNotObtained {
		return nil, errors.New("another " + jobName + " job is already running")
	} else if err != nil {
		config.LogError(logger, "bulkUpdate.go", "obtainBulkJobLock", "Obtain", jobName, err)
		return nil, err
	}
	return lock, nil
}

func progressChannel(ctx context.Context) string {
	user, _ := utils.GetUsernameFromContext(ctx)
	if user == "" {
		user = "Guest"
	}
	return fmt.Sprintf("bulk_job_progress:%s", user)
}

func publishProgress(channel string, progress, total int) {
	if err := config.PublishRedis(channel, map[string]int{"progress": progress, "total": total}); err != nil {
		config.LogError(config.GetLogger(), "bulkUpdate.go", "publishProgress", "PublishRedis", channel, err)
	}
}

// UpdateAllItemPriceQty refreshes the stock snapshot of every item price row,
// publishing progress to the caller's channel after each batch.
func UpdateAllItemPriceQty(ctx context.Context) BulkJobResult {
	logger := config.GetLogger()

	lock, err := obtainBulkJobLock(ctx, "update_all_item_price_qty")
	if err != nil {
		return BulkJobResult{Message: err.Error()}
	}
	defer func() {
		_ = lock.Release(ctx)
	}()

	ids, err := models.ListAllItemPriceIds(ctx)
	if err != nil {
		config.LogError(logger, "bulkUpdate.go", "UpdateAllItemPriceQty", "ListAllItemPriceIds", nil, err)
		return BulkJobResult{Message: "could not list item prices"}
	}

	channel := progressChannel(ctx)
	total := len(ids)
	updated, failed := 0, 0

	for i, id := range ids {
		if _, err := RefreshItemPrice(ctx, id); err != nil {
			failed++
			config.LogError(logger, "bulkUpdate.go", "UpdateAllItemPriceQty", "RefreshItemPrice", id, err)
		} else {
			updated++
		}

		done := i + 1
		if done%bulkBatchSize == 0 || done == total {
			publishProgress(channel, done, total)
		}
	}

	return BulkJobResult{
		Success: true,
		Updated: updated,
		Failed:  failed,
		Total:   total,
		Message: fmt.Sprintf("updated stock quantities on %d of %d item prices", updated, total),
	}
}

// UpdateAllItemsForeignPurchaseInfo recomputes the derived purchase fields of
// every item that appears on a submitted purchase document.
func UpdateAllItemsForeignPurchaseInfo(ctx context.Context) BulkJobResult {
	logger := config.GetLogger()

	lock, err := obtainBulkJobLock(ctx, "update_all_items_foreign_purchase")
	if err != nil {
		return BulkJobResult{Message: err.Error()}
	}
	defer func() {
		_ = lock.Release(ctx)
	}()

	itemCodes, err := models.ListPurchasedItemCodes(ctx)
	if err != nil {
		config.LogError(logger, "bulkUpdate.go", "UpdateAllItemsForeignPurchaseInfo", "ListPurchasedItemCodes", nil, err)
		return BulkJobResult{Message: "could not list purchased items"}
	}

	channel := progressChannel(ctx)
	total := len(itemCodes)
	updated, failed := 0, 0

	for i, itemCode := range itemCodes {
		if err := refreshItemForeignPurchase(ctx, itemCode); err != nil {
			failed++
			config.LogError(logger, "bulkUpdate.go", "UpdateAllItemsForeignPurchaseInfo", "refreshItemForeignPurchase", itemCode, err)
		} else {
			updated++
		}

		done := i + 1
		if done%bulkBatchSize == 0 || done == total {
			publishProgress(channel, done, total)
		}
	}

	return BulkJobResult{
		Success: true,
		Updated: updated,
		Failed:  failed,
		Total:   total,
		Message: fmt.Sprintf("updated foreign purchase info on %d of %d items", updated, total),
	}
}
