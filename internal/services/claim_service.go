package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/zikrya/Showdrop/internal/apperror"
	"github.com/zikrya/Showdrop/internal/config"
	"github.com/zikrya/Showdrop/internal/database"
	"github.com/zikrya/Showdrop/internal/logger"
	"github.com/zikrya/Showdrop/internal/models"
)

// errClaimConflict сигнализирует, что выбранный код увела параллельная
// транзакция; попытка повторяется против остатка пула.
var errClaimConflict = errors.New("selected code was claimed concurrently")

// ClaimService выдает скидочные коды. Каждая попытка — одна транзакция:
// проверка повторного запроса, проверка окна rate limit, выбор свободного
// кода под блокировкой строки и его привязка к email.
type ClaimService struct {
	db         *database.DB
	log        *logger.Logger
	window     time.Duration
	maxRetries int
}

// NewClaimService создает сервис выдачи кодов.
func NewClaimService(db *database.DB, log *logger.Logger, cfg *config.ClaimConfig) *ClaimService {
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	if window <= 0 {
		window = time.Minute
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	return &ClaimService{
		db:         db,
		log:        log,
		window:     window,
		maxRetries: retries,
	}
}

// Claim атомарно привязывает один свободный код кампании к email.
// Конфликты транзакций повторяются ограниченное число раз; бизнес-отказы
// (AlreadyClaimed, RateLimited, PoolExhausted, NotFound) возвращаются сразу
// и ничего не изменяют.
func (s *ClaimService) Claim(ctx context.Context, campaignID uuid.UUID, email string) (*models.DiscountCode, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		code, err := s.claimOnce(ctx, campaignID, email)
		if err == nil {
			return code, nil
		}
		if !isTransientConflict(err) {
			return nil, err
		}

		lastErr = err
		s.log.WithFields(map[string]interface{}{
			"campaign_id": campaignID,
			"attempt":     attempt + 1,
		}).Warn("Claim transaction conflict, retrying")
	}

	return nil, fmt.Errorf("claim failed after %d attempts: %w", s.maxRetries+1, lastErr)
}

func (s *ClaimService) claimOnce(ctx context.Context, campaignID uuid.UUID, email string) (*models.DiscountCode, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM campaigns WHERE id = $1", campaignID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("campaign not found", err)
		}
		return nil, fmt.Errorf("failed to check campaign: %w", err)
	}

	// Один email — один код на кампанию.
	var held int
	err = tx.QueryRowContext(ctx, `
		SELECT 1 FROM discount_codes
		WHERE campaign_id = $1 AND assigned_to_email = $2
		LIMIT 1
	`, campaignID, email).Scan(&held)
	if err == nil {
		return nil, apperror.AlreadyClaimed("you have already claimed a discount code for this campaign", nil)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check existing claim: %w", err)
	}

	var recent int
	err = tx.QueryRowContext(ctx, `
		SELECT 1 FROM discount_codes
		WHERE campaign_id = $1 AND assigned_to_email = $2 AND last_claimed_at > $3
		LIMIT 1
	`, campaignID, email, time.Now().Add(-s.window)).Scan(&recent)
	if err == nil {
		return nil, apperror.RateLimited("please wait before claiming again", nil)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check rate limit window: %w", err)
	}

	// Детерминированный выбор: самый старый свободный код. FOR UPDATE
	// сериализует гонки за одну и ту же строку.
	code := &models.DiscountCode{}
	err = tx.QueryRowContext(ctx, `
		SELECT id, campaign_id, code, created_at
		FROM discount_codes
		WHERE campaign_id = $1 AND assigned_to_email IS NULL
		ORDER BY created_at, id
		LIMIT 1
		FOR UPDATE
	`, campaignID).Scan(&code.ID, &code.CampaignID, &code.Code, &code.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.PoolExhausted("no discount codes left", err)
		}
		return nil, fmt.Errorf("failed to select available code: %w", err)
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
		UPDATE discount_codes
		SET assigned_to_email = $1, assigned_at = $2, last_claimed_at = $2
		WHERE id = $3 AND assigned_to_email IS NULL
	`, email, now, code.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to bind code: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Строку успела забрать другая транзакция между выбором и привязкой.
		return nil, errClaimConflict
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	code.AssignedToEmail = &email
	code.AssignedAt = &now
	code.LastClaimedAt = &now

	s.log.WithFields(map[string]interface{}{
		"campaign_id": campaignID,
		"code_id":     code.ID,
	}).Info("Discount code claimed")

	return code, nil
}

// isTransientConflict распознает конфликты, которые имеет смысл повторить:
// потерю строки между SELECT и UPDATE и ошибки сериализации/дедлока Postgres.
func isTransientConflict(err error) bool {
	if errors.Is(err, errClaimConflict) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}
