package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/lavka-pay/internal/domain"
)

type RefundHandler struct {
	svs RefundServicer
}

func NewRefundHandler(svs RefundServicer) *RefundHandler {
	return &RefundHandler{
		svs: svs,
	}
}

type RefundRequestParams struct {
	Type        string `json:"type"`
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

type RefundResponse struct {
	OrderID           int64   `json:"order_id"`
	RefundType        string  `json:"refund_type"`
	RefundStatus      string  `json:"refund_status"`
	RefundAmountCents int64   `json:"refund_amount_cents"`
	RefundReason      string  `json:"refund_reason,omitempty"`
	RefundedAt        *string `json:"refunded_at,omitempty"`
}

func refundResponse(order *domain.Order) *RefundResponse {
	resp := &RefundResponse{
		OrderID:           order.ID,
		RefundType:        string(order.RefundType),
		RefundStatus:      string(order.RefundStatus),
		RefundAmountCents: order.RefundAmountCents,
		RefundReason:      order.RefundReason,
	}
	if order.RefundedAt != nil {
		formatted := order.RefundedAt.Format(time.RFC3339)
		resp.RefundedAt = &formatted
	}
	return resp
}

// Request заявка покупателя на возврат по оплаченному заказу.
func (h *RefundHandler) Request(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	orderID, ok := getOrderIDParam(c)
	if !ok {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var params RefundRequestParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := h.svs.Request(
		reqCtx,
		orderID,
		currentUserID,
		domain.RefundTypeType(params.Type),
		params.AmountCents,
		params.Reason,
	)
	if err != nil {
		abortRefundError(c, err)
		return
	}

	c.JSON(http.StatusCreated, refundResponse(order))
}

// Approve одобрение заявки продавцом.
func (h *RefundHandler) Approve(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	orderID, ok := getOrderIDParam(c)
	if !ok {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := h.svs.Approve(reqCtx, orderID, currentUserID)
	if err != nil {
		abortRefundError(c, err)
		return
	}

	c.JSON(http.StatusOK, refundResponse(order))
}

type RefundRejectParams struct {
	Reason string `json:"reason"`
}

// Reject отклонение заявки продавцом с обязательной причиной.
func (h *RefundHandler) Reject(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	orderID, ok := getOrderIDParam(c)
	if !ok {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var params RefundRejectParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := h.svs.Reject(reqCtx, orderID, currentUserID, params.Reason)
	if err != nil {
		abortRefundError(c, err)
		return
	}

	c.JSON(http.StatusOK, refundResponse(order))
}

func abortRefundError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	case errors.Is(err, domain.ErrRefundConflict):
		c.AbortWithStatus(http.StatusConflict)
	case errors.Is(err, domain.ErrOrderNotRefundable),
		errors.Is(err, domain.ErrRefundAmountTooLarge),
		errors.Is(err, domain.ErrGuestCreditRefund):
		c.AbortWithStatus(http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrRejectReasonRequired):
		c.AbortWithStatus(http.StatusBadRequest)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}
