package models

import (
	"log"

	"github.com/apexcadcam/apex-item/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Company{}, &Warehouse{},
		&Item{}, &ItemDefault{}, &ItemPrice{},
		&Bin{},
		&PurchaseOrder{}, &PurchaseOrderDetail{},
		&PurchaseReceipt{}, &PurchaseReceiptDetail{},
		&PurchaseInvoice{}, &PurchaseInvoiceDetail{},
		&LandedCostVoucher{}, &LandedCostItem{},
		&CardSetting{}, &CardField{}, &ListViewSetting{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
