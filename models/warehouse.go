package models

import (
	"context"
	"errors"
	"time"

	"github.com/apexcadcam/apex-item/config"
)

type Warehouse struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name" binding:"required"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ItemDefault holds per-item fallback warehouses, ordered by Idx. The lowest
// Idx wins when the item itself has no default warehouse.
type ItemDefault struct {
	ID               int       `gorm:"primary_key" json:"id"`
	ItemCode         string    `gorm:"index;size:140;not null" json:"item_code"`
	DefaultWarehouse int       `gorm:"not null" json:"default_warehouse"`
	Idx              int       `gorm:"not null;default:0" json:"idx"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func GetWarehouse(ctx context.Context, id int) (*Warehouse, error) {
	db := config.GetDB()
	var warehouse Warehouse
	if err := db.WithContext(ctx).First(&warehouse, id).Error; err != nil {
		return nil, errors.New("warehouse not found")
	}
	return &warehouse, nil
}

// DefaultWarehouseCache memoizes per-item default warehouse lookups for the
// lifetime of one refresh run. A fresh cache per run keeps long batch jobs
// from serving stale warehouses.
type DefaultWarehouseCache struct {
	resolved map[string]*int
}

func NewDefaultWarehouseCache() *DefaultWarehouseCache {
	return &DefaultWarehouseCache{resolved: make(map[string]*int)}
}

// Get resolves the default warehouse for an item: the item-level default
// first, else the lowest-Idx ItemDefault row. Returns nil when the item has
// no default anywhere.
func (c *DefaultWarehouseCache) Get(ctx context.Context, itemCode string) *int {
	if itemCode == "" {
		return nil
	}
	if warehouseId, ok := c.resolved[itemCode]; ok {
		return warehouseId
	}
	warehouseId := resolveDefaultWarehouse(ctx, itemCode)
	c.resolved[itemCode] = warehouseId
	return warehouseId
}

func resolveDefaultWarehouse(ctx context.Context, itemCode string) *int {
	db := config.GetDB()

	var item Item
	err := db.WithContext(ctx).
		Select("default_warehouse_id").
		Where("item_code = ?", itemCode).
		First(&item).Error
	if err == nil && item.DefaultWarehouseId != nil && *item.DefaultWarehouseId > 0 {
		return item.DefaultWarehouseId
	}

	var itemDefault ItemDefault
	err = db.WithContext(ctx).
		Where("item_code = ?", itemCode).
		Order("idx asc").
		First(&itemDefault).Error
	if err != nil || itemDefault.DefaultWarehouse == 0 {
		return nil
	}
	return &itemDefault.DefaultWarehouse
}
