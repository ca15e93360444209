package models

import (
	"context"
	"time"

	"github.com/apexcadcam/apex-item/config"
)

type Company struct {
	ID              int       `gorm:"primary_key" json:"id"`
	Name            string    `gorm:"size:100;uniqueIndex;not null" json:"name" binding:"required"`
	DefaultCurrency string    `gorm:"size:10;not null" json:"default_currency" binding:"required"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetCompanyCurrency returns the base currency of the named company, or ""
// when the company is unknown.
func GetCompanyCurrency(ctx context.Context, name string) string {
	if name == "" {
		return ""
	}
	db := config.GetDB()
	var currency string
	if err := db.WithContext(ctx).Model(&Company{}).
		Select("default_currency").
		Where("name = ?", name).
		Scan(&currency).Error; err != nil {
		return ""
	}
	return currency
}
