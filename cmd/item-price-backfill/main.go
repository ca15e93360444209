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
	all := flag.Bool("all", false, "Refresh every item price row")
	itemCode := flag.String("item-code", "", "Refresh rows for one item code")
	priceList := flag.String("price-list", "", "Restrict to one price list")
	itemGroup := flag.String("item-group", "", "Restrict to one item group")
	limit := flag.Int("limit", 1000, "Max rows when filtering")
	flag.Parse()

	if !*all && strings.TrimSpace(*itemCode) == "" && strings.TrimSpace(*priceList) == "" && strings.TrimSpace(*itemGroup) == "" {
		fmt.Fprintln(os.Stderr, "pass --all or at least one of --item-code/--price-list/--item-group")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	ctx := utils.SetRunInlineInContext(context.Background(), true)

	if *all {
		result := workflow.UpdateAllItemPriceQty(ctx)
		fmt.Printf("updated=%d failed=%d total=%d: %s\n", result.Updated, result.Failed, result.Total, result.Message)
		if !result.Success {
			os.Exit(1)
		}
		return
	}

	filter := models.ItemPriceFilter{
		ItemCode:  strings.TrimSpace(*itemCode),
		PriceList: strings.TrimSpace(*priceList),
		ItemGroup: strings.TrimSpace(*itemGroup),
	}
	updated, err := workflow.RefreshItemPricesByFilter(ctx, filter, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "refresh failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("updated %d item prices\n", updated)
}
