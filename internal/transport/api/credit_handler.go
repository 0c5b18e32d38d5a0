package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type CreditHandler struct {
	svs CreditServicer
}

func NewCreditHandler(svs CreditServicer) *CreditHandler {
	return &CreditHandler{
		svs: svs,
	}
}

type CreditEntryResponseItem struct {
	AmountCents int64   `json:"amount_cents"`
	Reason      string  `json:"reason"`
	ExpiresAt   *string `json:"expires_at,omitempty"`
}

type CreditBalanceResponse struct {
	TotalCents     int64                     `json:"total_cents"`
	AvailableCents int64                     `json:"available_cents"`
	ExpiredCents   int64                     `json:"expired_cents"`
	Entries        []CreditEntryResponseItem `json:"entries"`
}

// Index отдает баланс кредитов текущего юзера с грантами в порядке потребления.
func (h *CreditHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := h.svs.AvailableCredit(reqCtx, currentUserID, time.Now())
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	entries := make([]CreditEntryResponseItem, len(balance.Entries))
	for i, entry := range balance.Entries {
		item := CreditEntryResponseItem{
			AmountCents: entry.AmountCents,
			Reason:      entry.Reason,
		}
		if entry.ExpiresAt != nil {
			formatted := entry.ExpiresAt.Format(time.RFC3339)
			item.ExpiresAt = &formatted
		}
		entries[i] = item
	}

	c.JSON(http.StatusOK, &CreditBalanceResponse{
		TotalCents:     balance.TotalCents,
		AvailableCents: balance.AvailableCents,
		ExpiredCents:   balance.ExpiredCents,
		Entries:        entries,
	})
}
