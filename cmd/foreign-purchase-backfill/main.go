package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/apexcadcam/apex-item/config"
	"github.com/apexcadcam/apex-item/models"
	"github.com/apexcadcam/apex-item/utils"
	"github.com/apexcadcam/apex-item/workflow"
)

func main() {
	itemCode := flag.String("item-code", "", "Recompute one item only")
	activeItems := flag.Bool("active-items", false, "Recompute every enabled stock item, not just purchased ones")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	ctx := utils.SetRunInlineInContext(context.Background(), true)

	if code := strings.TrimSpace(*itemCode); code != "" {
		workflow.UpdateItemForeignPurchaseFields(ctx, []string{code})
		fmt.Printf("recomputed foreign purchase info for %s\n", code)
		return
	}

	if *activeItems {
		// clears derived fields on items with no purchase history at all
		codes, err := models.ListActiveStockItemCodes(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list items: %v\n", err)
			os.Exit(1)
		}
		workflow.UpdateItemForeignPurchaseFields(ctx, codes)
		fmt.Printf("recomputed foreign purchase info for %d items\n", len(codes))
		return
	}

	result := workflow.UpdateAllItemsForeignPurchaseInfo(ctx)
	fmt.Printf("updated=%d failed=%d total=%d: %s\n", result.Updated, result.Failed, result.Total, result.Message)
	if !result.Success {
		os.Exit(1)
	}
}
