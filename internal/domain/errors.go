package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")

	ErrPasswordMissMatch = errors.New("password missmatch")

	ErrNotEnoughCredit = errors.New("not enough credit")
	ErrRefundConflict  = errors.New("refund request state conflict")
	ErrDuplicatePeriod = errors.New("billing period already processed")

	ErrOrderNotRefundable   = errors.New("order is not refundable")
	ErrRefundAmountTooLarge = errors.New("refund amount exceeds order total")
	ErrGuestCreditRefund    = errors.New("credit refund is unavailable for guest orders")
	ErrRejectReasonRequired = errors.New("reject reason is required")
)

// InsufficientCreditError бизнес-ошибка списания: запрошено больше, чем доступно
// неистекших кредитов. Оборачивает ErrNotEnoughCredit для проверки через errors.Is.
type InsufficientCreditError struct {
	UserID         int64
	RequestedCents int64
	AvailableCents int64
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf(
		"user %d has %d cents available, %d requested",
		e.UserID, e.AvailableCents, e.RequestedCents,
	)
}

func (e *InsufficientCreditError) Unwrap() error {
	return ErrNotEnoughCredit
}
