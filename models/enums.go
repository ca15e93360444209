package models

type DocStatus string

const (
	DocStatusDraft     DocStatus = "Draft"
	DocStatusSubmitted DocStatus = "Submitted"
	DocStatusCancelled DocStatus = "Cancelled"
)

type VoucherType string

const (
	VoucherTypePurchaseOrder   VoucherType = "Purchase Order"
	VoucherTypePurchaseReceipt VoucherType = "Purchase Receipt"
	VoucherTypePurchaseInvoice VoucherType = "Purchase Invoice"
)

type ExpenseCalculationMethod string

const (
	ExpenseMethodFixedAmount ExpenseCalculationMethod = "Fixed Amount"
	ExpenseMethodPercentage  ExpenseCalculationMethod = "Percentage"
)
