package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/lavka-pay/internal/domain"
)

type BillingHandler struct {
	svs BillingServicer
}

func NewBillingHandler(svs BillingServicer) *BillingHandler {
	return &BillingHandler{
		svs: svs,
	}
}

type BillingRunParams struct {
	// Month и Year опциональны: нулевые значения означают текущий период.
	Month int32 `json:"month"`
	Year  int32 `json:"year"`
}

type BillingRunResponse struct {
	PeriodMonth    int32 `json:"period_month"`
	PeriodYear     int32 `json:"period_year"`
	ShopsProcessed int   `json:"shops_processed"`
	FeesCreated    int   `json:"fees_created"`
	FeesCollected  int   `json:"fees_collected"`
	Skipped        int   `json:"skipped"`
	Failed         int   `json:"failed"`
}

// Run ручной запуск биллингового прогона за период. Повторный запуск за уже
// обсчитанный период возвращает 409.
func (h *BillingHandler) Run(c *gin.Context) {
	var params BillingRunParams
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
			_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
			return
		}
	}

	if params.Month == 0 || params.Year == 0 {
		now := time.Now()
		params.Month = int32(now.Month())
		params.Year = int32(now.Year())
	}
	if params.Month < 1 || params.Month > 12 {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultBillingTimeout)
	defer cancel()

	result, err := h.svs.RunForPeriod(reqCtx, params.Month, params.Year)
	if err != nil && !errors.Is(err, domain.ErrDuplicatePeriod) {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	response := &BillingRunResponse{
		PeriodMonth:    result.PeriodMonth,
		PeriodYear:     result.PeriodYear,
		ShopsProcessed: result.ShopsProcessed,
		FeesCreated:    result.FeesCreated,
		FeesCollected:  result.FeesCollected,
		Skipped:        result.Skipped,
		Failed:         result.Failed,
	}
	if errors.Is(err, domain.ErrDuplicatePeriod) {
		c.JSON(http.StatusConflict, response)
		return
	}
	c.JSON(http.StatusOK, response)
}
