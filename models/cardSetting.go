package models

import (
	"context"
	"errors"
	"time"

	"github.com/apexcadcam/apex-item/config"
	"gorm.io/gorm"
)

// CardSetting is the admin-managed singleton behind the item price card.
// There is at most one row; Ensure/Reset regenerate it with the canonical
// defaults when missing.
type CardSetting struct {
	ID             int         `gorm:"primary_key" json:"id"`
	ShowItemImage  *bool       `gorm:"not null;default:false" json:"show_item_image"`
	EmptyStateText string      `gorm:"size:255" json:"empty_state_text"`
	Fields         []CardField `gorm:"foreignKey:CardSettingId" json:"fields"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type CardField struct {
	ID            int    `gorm:"primary_key" json:"id"`
	CardSettingId int    `gorm:"index;not null" json:"card_setting_id"`
	Idx           int    `gorm:"not null;default:0" json:"idx"`
	Fieldname     string `gorm:"size:140;not null" json:"fieldname"`
	Label         string `gorm:"size:140" json:"label"`
	CssClass      string `gorm:"size:140" json:"css_class"`
	IsFullWidth   *bool  `gorm:"not null;default:false" json:"is_full_width"`
	HideIfZero    *bool  `gorm:"not null;default:false" json:"hide_if_zero"`
}

// ListViewSetting stores a user-facing list view column layout, keyed by
// doctype. RawFields holds the column JSON exactly as the UI saved it.
type ListViewSetting struct {
	ID          int       `gorm:"primary_key" json:"id"`
	DocType     string    `gorm:"uniqueIndex;size:140;not null" json:"doc_type"`
	RawFields   string    `gorm:"type:text" json:"raw_fields"`
	TotalFields int       `gorm:"default:0" json:"total_fields"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

const itemPriceDocType = "Item Price"

// GetCardSetting returns the singleton with its ordered field rows, or nil
// when it was never created (or was deleted).
func GetCardSetting(ctx context.Context) (*CardSetting, error) {
	db := config.GetDB()
	var setting CardSetting
	err := db.WithContext(ctx).
		Preload("Fields", func(tx *gorm.DB) *gorm.DB { return tx.Order("idx asc") }).
		First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// EnsureCardSetting creates the singleton with the default field rows when
// it does not exist yet. Existing settings are left untouched.
func EnsureCardSetting(ctx context.Context) (*CardSetting, error) {
	setting, err := GetCardSetting(ctx)
	if err != nil {
		return nil, err
	}
	if setting != nil {
		return setting, nil
	}
	return createDefaultCardSetting(ctx)
}

// ResetCardSetting drops whatever exists and recreates the canonical
// default configuration.
func ResetCardSetting(ctx context.Context) (*CardSetting, error) {
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&CardField{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&CardSetting{}).Error
	})
	if err != nil {
		return nil, err
	}
	if err := ClearItemPriceCardConfigCache(ctx); err != nil {
		config.LogError(config.GetLogger(), "models", "ResetCardSetting", "clear cache", nil, err)
	}
	return createDefaultCardSetting(ctx)
}

func createDefaultCardSetting(ctx context.Context) (*CardSetting, error) {
	db := config.GetDB()
	defaults := DefaultCardConfig()

	showImage := defaults.ShowItemImage
	setting := CardSetting{
		ShowItemImage:  &showImage,
		EmptyStateText: defaults.EmptyStateText,
	}
	for idx, field := range defaults.Fields {
		fullWidth := field.IsFullWidth
		hideIfZero := field.HideIfZero
		setting.Fields = append(setting.Fields, CardField{
			Idx:         idx + 1,
			Fieldname:   field.Fieldname,
			Label:       field.Label,
			CssClass:    field.CssClass,
			IsFullWidth: &fullWidth,
			HideIfZero:  &hideIfZero,
		})
	}

	if err := db.WithContext(ctx).Create(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetItemPriceListViewSetting returns the stored list view layout for Item
// Price, or nil when the user never customized one.
func GetItemPriceListViewSetting(ctx context.Context) (*ListViewSetting, error) {
	db := config.GetDB()
	var setting ListViewSetting
	err := db.WithContext(ctx).Where("doc_type = ?", itemPriceDocType).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}
