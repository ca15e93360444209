package models_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/apexcadcam/apex-item/config"
	"github.com/apexcadcam/apex-item/models"
	"github.com/apexcadcam/apex-item/utils"
	"github.com/apexcadcam/apex-item/workflow"
)

func requireIntegration(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires MySQL + Redis)")
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetUsernameInContext(ctx, "test@local")
	ctx = utils.SetRunInlineInContext(ctx, true)
	return ctx
}

func TestRefreshItemPrice_PersistsBinDerivedSnapshot(t *testing.T) {
	ctx := requireIntegration(t)
	db := config.GetDB()

	warehouse := models.Warehouse{Name: "Main Store - IT"}
	if err := db.WithContext(ctx).Create(&warehouse).Error; err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	t.Cleanup(func() { db.Delete(&warehouse) })

	item := models.Item{ItemCode: "IT-SNAP-001", ItemGroup: "Raw Material"}
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}
	t.Cleanup(func() { db.Delete(&item) })

	bin := models.Bin{
		ItemCode:                 item.ItemCode,
		WarehouseId:              warehouse.ID,
		ActualQty:                decimal.NewFromInt(12),
		ReservedQty:              decimal.NewFromInt(3),
		ReservedQtyForProduction: decimal.NewFromInt(2),
	}
	if err := db.WithContext(ctx).Create(&bin).Error; err != nil {
		t.Fatalf("create bin: %v", err)
	}
	t.Cleanup(func() { db.Delete(&bin) })

	itemPrice := models.ItemPrice{
		ItemCode:         item.ItemCode,
		PriceList:        "Standard Selling",
		PriceListRate:    decimal.NewFromInt(500),
		StockWarehouseId: &warehouse.ID,
	}
	if err := db.WithContext(ctx).Create(&itemPrice).Error; err != nil {
		t.Fatalf("create item price: %v", err)
	}
	t.Cleanup(func() { db.Delete(&itemPrice) })

	snapshot, err := workflow.RefreshItemPrice(ctx, itemPrice.ID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !snapshot.ActualQty.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("actual = %s, want 12", snapshot.ActualQty)
	}
	if !snapshot.ReservedQty.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("reserved = %s, want 5 (all three reserved columns summed)", snapshot.ReservedQty)
	}
	if !snapshot.AvailableQty.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("available = %s, want 7", snapshot.AvailableQty)
	}

	var persisted models.ItemPrice
	if err := db.WithContext(ctx).First(&persisted, itemPrice.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !persisted.AvailableQty.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("persisted available = %s, want 7", persisted.AvailableQty)
	}
	if persisted.ItemGroup != "Raw Material" {
		t.Fatalf("persisted item group = %s", persisted.ItemGroup)
	}
}

func TestRefreshItemPrice_MissingRowReturnsNotFound(t *testing.T) {
	ctx := requireIntegration(t)

	_, err := workflow.RefreshItemPrice(ctx, 999999999)
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("err = %v, want the record-not-found sentinel", err)
	}
}

func TestRefreshItemPricesByFilter_BoundedAndCounted(t *testing.T) {
	ctx := requireIntegration(t)
	db := config.GetDB()

	item := models.Item{ItemCode: "IT-FILTER-001", ItemGroup: "Consumable"}
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}
	t.Cleanup(func() { db.Delete(&item) })

	var created []models.ItemPrice
	for _, priceList := range []string{"Standard Selling", "Wholesale", "Retail"} {
		row := models.ItemPrice{ItemCode: item.ItemCode, PriceList: priceList}
		if err := db.WithContext(ctx).Create(&row).Error; err != nil {
			t.Fatalf("create item price: %v", err)
		}
		created = append(created, row)
	}
	t.Cleanup(func() {
		for i := range created {
			db.Delete(&created[i])
		}
	})

	updated, err := workflow.RefreshItemPricesByFilter(ctx, models.ItemPriceFilter{ItemCode: item.ItemCode}, 2)
	if err != nil {
		t.Fatalf("refresh by filter: %v", err)
	}
	if updated != 2 {
		t.Fatalf("updated = %d, want the limit of 2", updated)
	}
}
