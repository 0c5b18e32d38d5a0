package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/lavka-pay/internal/transport/payment"
)

// SignatureHeader заголовок подписи вебхука провайдера.
const SignatureHeader = "Payment-Signature"

type WebhookHandler struct {
	svs           SettlementServicer
	webhookSecret []byte
}

func NewWebhookHandler(svs SettlementServicer, webhookSecret []byte) *WebhookHandler {
	return &WebhookHandler{
		svs:           svs,
		webhookSecret: webhookSecret,
	}
}

// HandlePayment принимает вебхук платежного провайдера. Порядок жесткий:
// сначала подпись, потом разбор, потом применение. Невалидная подпись или
// payload — 400 без каких-либо мутаций; ошибка применения — 500, провайдер
// доставит событие повторно.
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	body, readErr := c.GetRawData()
	if readErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, readErr).SetType(gin.ErrorTypePrivate)
		return
	}

	sigErr := payment.VerifySignature(
		body,
		c.GetHeader(SignatureHeader),
		h.webhookSecret,
		payment.DefaultSignatureTolerance,
		time.Now(),
	)
	if sigErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, sigErr).SetType(gin.ErrorTypePrivate)
		return
	}

	event, decodeErr := payment.Decode(body)
	if decodeErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, decodeErr).SetType(gin.ErrorTypePrivate)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultWebhookTimeout)
	defer cancel()

	if err := h.svs.HandleEvent(reqCtx, event); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
