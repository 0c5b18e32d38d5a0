package repoargs

import "time"

// CreditEntryCreate новая запись леджера. Отрицательный AmountCents — аудитная
// запись списания.
type CreditEntryCreate struct {
	UserID      int64
	Funder      string
	Reason      string
	AmountCents int64
	ExpiresAt   *time.Time
}
