package domain

import "fmt"

type PaymentStatusType string

const (
	PaymentStatusPending  PaymentStatusType = "pending"
	PaymentStatusPaid     PaymentStatusType = "paid"
	PaymentStatusRefunded PaymentStatusType = "refunded"
)

type FeeType string

const (
	FeeTypeTransaction       FeeType = "transaction"
	FeeTypePaymentProcessing FeeType = "payment_processing"
	FeeTypeAdvertising       FeeType = "advertising"
	FeeTypeListing           FeeType = "listing"
)

type RefundTypeType string

const (
	RefundTypeCash   RefundTypeType = "CASH"
	RefundTypeCredit RefundTypeType = "CREDIT"
)

type RefundStatusType string

const (
	RefundStatusNone       RefundStatusType = ""
	RefundStatusRequested  RefundStatusType = "REQUESTED"
	RefundStatusApproved   RefundStatusType = "APPROVED"
	RefundStatusRejected   RefundStatusType = "REJECTED"
	RefundStatusProcessing RefundStatusType = "PROCESSING"
	RefundStatusCompleted  RefundStatusType = "COMPLETED"
)

// FunderPlatform единственный источник кредитов на данный момент.
const FunderPlatform = "PLATFORM"

const ReasonWelcomeBonus = "WELCOME_BONUS"

// ReasonUsedForOrder тег аудитной записи списания кредитов под заказ.
func ReasonUsedForOrder(orderRef string) string {
	return fmt.Sprintf("USED_FOR_ORDER_%s", orderRef)
}

// ReasonRestoredFromFailedOrder тег возврата кредитов по несостоявшемуся заказу.
func ReasonRestoredFromFailedOrder(orderRef string) string {
	return fmt.Sprintf("RESTORED_FROM_FAILED_ORDER_%s", orderRef)
}

// ReasonRefundForOrder тег кредитного рефанда по заказу.
func ReasonRefundForOrder(orderID int64) string {
	return fmt.Sprintf("REFUND_FOR_ORDER_%d", orderID)
}
