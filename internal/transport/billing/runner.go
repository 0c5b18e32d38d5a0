// Package billing периодический запуск ежемесячного листингового биллинга.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/service"
)

const defaultRunInterval = time.Hour

// advisoryLockKey ключ сессионной advisory-блокировки прогона. Гарантирует, что
// при нескольких инстансах приложения период обсчитывает ровно один.
const advisoryLockKey int64 = 874012

// Servicer интерфейс исключительно для моков.
type Servicer interface {
	RunForPeriod(ctx context.Context, month, year int32) (*service.BillingRunResult, error)
}

// Runner по расписанию обсчитывает текущий период. Сам прогон идемпотентен,
// блокировка лишь экономит дублирующую работу конкурентных инстансов.
type Runner struct {
	svs      Servicer
	pool     *pgxpool.Pool
	interval time.Duration
	l        *logrus.Entry
}

func New(svs Servicer, pool *pgxpool.Pool, interval time.Duration, l *logrus.Logger) *Runner {
	if interval <= 0 {
		interval = defaultRunInterval
	}
	return &Runner{
		svs:      svs,
		pool:     pool,
		interval: interval,
		l: l.WithFields(logrus.Fields{
			"component": "billing",
			"module":    "runner",
		}),
	}
}

// Run крутит прогоны до отмены контекста. Первый прогон — сразу на старте:
// после рестарта в начале месяца ждать час незачем.
func (r *Runner) Run(ctx context.Context) {
	r.l.WithField("interval", r.interval.String()).Info("Starting")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			r.l.Info("Got stop signal, exiting...")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	conn, acquireErr := r.pool.Acquire(ctx)
	if acquireErr != nil {
		r.l.WithError(acquireErr).Error("acquiring connection for billing run")
		return
	}
	defer conn.Release()

	var locked bool
	if lockErr := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, advisoryLockKey).Scan(&locked); lockErr != nil {
		r.l.WithError(lockErr).Error("taking billing advisory lock")
		return
	}
	if !locked {
		r.l.Debug("billing run already in progress on another instance")
		return
	}
	defer func() {
		if _, unlockErr := conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, advisoryLockKey); unlockErr != nil {
			r.l.WithError(unlockErr).Error("releasing billing advisory lock")
		}
	}()

	now := time.Now()
	result, runErr := r.svs.RunForPeriod(ctx, int32(now.Month()), int32(now.Year()))
	if runErr != nil {
		if errors.Is(runErr, domain.ErrDuplicatePeriod) {
			r.l.Debug("current period already billed")
			return
		}
		r.l.WithError(runErr).Error("billing run failed")
		return
	}

	if result.FeesCreated > 0 {
		r.l.WithFields(logrus.Fields{
			"month":     result.PeriodMonth,
			"year":      result.PeriodYear,
			"created":   result.FeesCreated,
			"collected": result.FeesCollected,
		}).Info("billing run applied")
	}
}
