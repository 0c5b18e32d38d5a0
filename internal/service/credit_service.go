package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/repository/repoargs"
	"github.com/fsdevblog/lavka-pay/pkg/uow"
)

// CreditService кредитный леджер юзеров. Все мутации выполняются в одной
// транзакции и начинаются с блокировки строки юзера: конкурентные списания и
// начисления одного юзера строго сериализованы.
type CreditService struct {
	uow                 uow.UOW
	creditRepo          CreditEntryRepository
	welcomeBonusCents   int64
	welcomeBonusTTLDays int
}

func NewCreditService(u uow.UOW, welcomeBonusCents int64, welcomeBonusTTLDays int) (*CreditService, error) {
	creditRepo, repoErr := uow.GetRepositoryAs[CreditEntryRepository](
		u, uow.RepositoryName(repoargs.CreditEntryRepoName),
	)
	if repoErr != nil {
		return nil, repoErr
	}
	return &CreditService{
		uow:                 u,
		creditRepo:          creditRepo,
		welcomeBonusCents:   welcomeBonusCents,
		welcomeBonusTTLDays: welcomeBonusTTLDays,
	}, nil
}

// CreditBalance проекция леджера юзера. Истекшие гранты входят в Total, но не в
// Available. Аудитные (отрицательные) записи в баланс не входят — они только
// след списаний.
type CreditBalance struct {
	TotalCents     int64
	AvailableCents int64
	ExpiredCents   int64
	// Entries гранты в порядке потребления: ближайшее истечение первым,
	// бессрочные в конце.
	Entries []domain.CreditEntry
}

// DebitResult результат успешного списания.
type DebitResult struct {
	UsedCents      int64
	RemainingCents int64
}

// AvailableCredit возвращает баланс юзера, разложенный на доступную и истекшую
// части, и гранты в порядке потребления.
func (s *CreditService) AvailableCredit(ctx context.Context, userID int64, now time.Time) (*CreditBalance, error) {
	entries, err := s.creditRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting credit balance: %w", err)
	}
	return projectBalance(entries, now), nil
}

// Debit списывает amountCents кредитов юзера под заказ orderRef в порядке
// FIFO/истечения: полностью использованный грант удаляется, частично — урезается.
// В конце добавляется одна отрицательная аудитная запись и декрементируется
// денормализованный баланс. Всё — одна транзакция: либо списание применилось
// целиком, либо леджер не тронут. При нехватке неистекших кредитов возвращается
// *domain.InsufficientCreditError без каких-либо мутаций.
func (s *CreditService) Debit(
	ctx context.Context,
	userID int64,
	amountCents int64,
	orderRef string,
	now time.Time,
) (*DebitResult, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("debiting credit: non-positive amount %d", amountCents)
	}

	var result *DebitResult
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}
		creditRepo, creditRepoErr := uow.GetAs[CreditEntryRepository](
			tx, uow.RepositoryName(repoargs.CreditEntryRepoName),
		)
		if creditRepoErr != nil {
			return creditRepoErr //nolint:wrapcheck
		}

		// Блокировка юзера сериализует конкурентные списания: два одновременных
		// чекаута не могут оба увидеть достаточный баланс.
		if _, lockErr := userRepo.FindByIDForUpdate(c, userID); lockErr != nil {
			return lockErr //nolint:wrapcheck
		}

		entries, entriesErr := creditRepo.GetByUserIDForUpdate(c, userID)
		if entriesErr != nil {
			return entriesErr //nolint:wrapcheck
		}

		balance := projectBalance(entries, now)
		if balance.AvailableCents < amountCents {
			return &domain.InsufficientCreditError{
				UserID:         userID,
				RequestedCents: amountCents,
				AvailableCents: balance.AvailableCents,
			}
		}

		remaining := amountCents
		for _, entry := range balance.Entries {
			if remaining == 0 {
				break
			}
			if isExpired(entry, now) {
				continue
			}
			if entry.AmountCents <= remaining {
				if delErr := creditRepo.Delete(c, entry.ID); delErr != nil {
					return delErr //nolint:wrapcheck
				}
				remaining -= entry.AmountCents
				continue
			}
			if updErr := creditRepo.UpdateAmount(c, entry.ID, entry.AmountCents-remaining); updErr != nil {
				return updErr //nolint:wrapcheck
			}
			remaining = 0
		}

		if _, auditErr := creditRepo.Create(c, repoargs.CreditEntryCreate{
			UserID:      userID,
			Funder:      domain.FunderPlatform,
			Reason:      domain.ReasonUsedForOrder(orderRef),
			AmountCents: -amountCents,
		}); auditErr != nil {
			return auditErr //nolint:wrapcheck
		}

		if _, adjErr := userRepo.AdjustStoreCredit(c, userID, -amountCents); adjErr != nil {
			return adjErr //nolint:wrapcheck
		}

		result = &DebitResult{
			UsedCents:      amountCents,
			RemainingCents: balance.AvailableCents - amountCents,
		}
		return nil
	})

	if txErr != nil {
		var insufficient *domain.InsufficientCreditError
		if errors.As(txErr, &insufficient) {
			return nil, insufficient
		}
		return nil, fmt.Errorf("debiting credit for user %d: %w", userID, txErr)
	}
	return result, nil
}

// Restore возвращает юзеру кредиты, зарезервированные под несостоявшийся заказ.
// Запись бессрочная.
func (s *CreditService) Restore(ctx context.Context, userID int64, amountCents int64, orderRef string) error {
	if amountCents <= 0 {
		return fmt.Errorf("restoring credit: non-positive amount %d", amountCents)
	}
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		return grantInTx(c, tx, repoargs.CreditEntryCreate{
			UserID:      userID,
			Funder:      domain.FunderPlatform,
			Reason:      domain.ReasonRestoredFromFailedOrder(orderRef),
			AmountCents: amountCents,
		})
	})
	if txErr != nil {
		return fmt.Errorf("restoring credit for user %d: %w", userID, txErr)
	}
	return nil
}

// Grant начисляет кредиты с опциональным сроком жизни в днях (0 — бессрочно).
// Общий путь для ручных начислений и кредитных рефандов. Срок считается от now,
// как и везде в леджере.
func (s *CreditService) Grant(
	ctx context.Context,
	userID int64,
	amountCents int64,
	reason string,
	expiresInDays int,
	now time.Time,
) error {
	if amountCents <= 0 {
		return fmt.Errorf("granting credit: non-positive amount %d", amountCents)
	}
	var expiresAt *time.Time
	if expiresInDays > 0 {
		t := now.AddDate(0, 0, expiresInDays)
		expiresAt = &t
	}
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		return grantInTx(c, tx, repoargs.CreditEntryCreate{
			UserID:      userID,
			Funder:      domain.FunderPlatform,
			Reason:      reason,
			AmountCents: amountCents,
			ExpiresAt:   expiresAt,
		})
	})
	if txErr != nil {
		return fmt.Errorf("granting credit `%s` to user %d: %w", reason, userID, txErr)
	}
	return nil
}

// AwardWelcomeBonusIfEligible выдает приветственный бонус, если у юзера нет
// записи WELCOME_BONUS и это его первый оплаченный заказ (считая текущий).
// Безопасен на каждый ретрай вебхука: после первой выдачи — no-op. Гонку двух
// конкурентных расчетов закрывает уникальный индекс: проигравший получает
// ErrDuplicateKey и трактует его как успех.
//
// Вызывается внутри транзакции расчета заказа, поэтому принимает uow.TX.
func (s *CreditService) AwardWelcomeBonusIfEligible(
	ctx context.Context,
	tx uow.TX,
	userID int64,
	now time.Time,
) (bool, error) {
	creditRepo, creditRepoErr := uow.GetAs[CreditEntryRepository](
		tx, uow.RepositoryName(repoargs.CreditEntryRepoName),
	)
	if creditRepoErr != nil {
		return false, creditRepoErr //nolint:wrapcheck
	}
	orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return false, orderRepoErr //nolint:wrapcheck
	}

	hasBonus, hasErr := creditRepo.HasWelcomeBonus(ctx, userID)
	if hasErr != nil {
		return false, hasErr //nolint:wrapcheck
	}
	if hasBonus {
		return false, nil
	}

	paidCount, countErr := orderRepo.CountPaidByBuyer(ctx, userID)
	if countErr != nil {
		return false, countErr //nolint:wrapcheck
	}
	if paidCount != 1 {
		return false, nil
	}

	var expiresAt *time.Time
	if s.welcomeBonusTTLDays > 0 {
		t := now.AddDate(0, 0, s.welcomeBonusTTLDays)
		expiresAt = &t
	}

	grantErr := grantInTx(ctx, tx, repoargs.CreditEntryCreate{
		UserID:      userID,
		Funder:      domain.FunderPlatform,
		Reason:      domain.ReasonWelcomeBonus,
		AmountCents: s.welcomeBonusCents,
		ExpiresAt:   expiresAt,
	})
	if grantErr != nil {
		if errors.Is(grantErr, domain.ErrDuplicateKey) {
			// параллельный расчет успел первым
			return false, nil
		}
		return false, grantErr
	}
	return true, nil
}

// grantInTx общая механика начисления: блокировка юзера, запись леджера,
// инкремент денормализованного баланса. Только внутри транзакции.
func grantInTx(ctx context.Context, tx uow.TX, args repoargs.CreditEntryCreate) error {
	userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return userRepoErr //nolint:wrapcheck
	}
	creditRepo, creditRepoErr := uow.GetAs[CreditEntryRepository](
		tx, uow.RepositoryName(repoargs.CreditEntryRepoName),
	)
	if creditRepoErr != nil {
		return creditRepoErr //nolint:wrapcheck
	}

	if _, lockErr := userRepo.FindByIDForUpdate(ctx, args.UserID); lockErr != nil {
		return lockErr //nolint:wrapcheck
	}
	if _, createErr := creditRepo.Create(ctx, args); createErr != nil {
		return createErr //nolint:wrapcheck
	}
	if _, adjErr := userRepo.AdjustStoreCredit(ctx, args.UserID, args.AmountCents); adjErr != nil {
		return adjErr //nolint:wrapcheck
	}
	return nil
}

// projectBalance считает баланс по грантам. Отрицательные аудитные записи
// пропускаются: остаток уже учтен в урезанных/удаленных грантах.
func projectBalance(entries []domain.CreditEntry, now time.Time) *CreditBalance {
	balance := &CreditBalance{}
	for _, entry := range entries {
		if entry.AmountCents <= 0 {
			continue
		}
		balance.TotalCents += entry.AmountCents
		if isExpired(entry, now) {
			balance.ExpiredCents += entry.AmountCents
		} else {
			balance.AvailableCents += entry.AmountCents
		}
		balance.Entries = append(balance.Entries, entry)
	}
	return balance
}

func isExpired(entry domain.CreditEntry, now time.Time) bool {
	return entry.ExpiresAt != nil && entry.ExpiresAt.Before(now)
}
