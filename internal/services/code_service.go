package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zikrya/Showdrop/internal/apperror"
	"github.com/zikrya/Showdrop/internal/config"
	"github.com/zikrya/Showdrop/internal/database"
	"github.com/zikrya/Showdrop/internal/logger"
	"github.com/zikrya/Showdrop/internal/models"
)

// minManualCodeLength — минимальная длина кода при ручном вводе.
const minManualCodeLength = 5

// codeInsertBatchSize ограничивает число строк в одном INSERT
// (лимит параметров Postgres).
const codeInsertBatchSize = 1000

// CodeService пополняет пул кодов и отдает детали кампании владельцу.
type CodeService struct {
	db          *database.DB
	log         *logger.Logger
	campaigns   *CampaignService
	codeLength  int
	maxGenerate int
}

// NewCodeService создает сервис пула кодов.
func NewCodeService(db *database.DB, log *logger.Logger, campaigns *CampaignService, cfg *config.ClaimConfig) *CodeService {
	codeLength := cfg.GeneratedCodeLength
	if codeLength <= 0 {
		codeLength = DefaultCodeLength
	}
	maxGenerate := cfg.MaxGeneratePerRequest
	if maxGenerate <= 0 {
		maxGenerate = 10000
	}

	return &CodeService{
		db:          db,
		log:         log,
		campaigns:   campaigns,
		codeLength:  codeLength,
		maxGenerate: maxGenerate,
	}
}

// AddCodes пополняет пул кампании. Доступно только владельцу. В запросе
// заполняется ровно одно из полей: список готовых кодов или количество для
// генерации. Коды, уже присутствующие в пуле, молча пропускаются; если новых
// кодов не осталось — Validation.
func (s *CodeService) AddCodes(ctx context.Context, campaignID uuid.UUID, callerID string, req *models.AddCodesRequest) ([]*models.DiscountCode, error) {
	if err := validateAddCodesPayload(req, s.maxGenerate); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	if _, err := s.campaigns.AssertOwner(ctx, campaignID, callerID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := loadExistingCodes(ctx, tx, campaignID)
	if err != nil {
		return nil, err
	}

	var newCodes []string
	if req.Generate > 0 {
		newCodes, err = GenerateCodes(req.Generate, s.codeLength, existing)
		if err != nil {
			return nil, fmt.Errorf("failed to generate codes: %w", err)
		}
	} else {
		for _, raw := range req.Codes {
			code := strings.TrimSpace(raw)
			if len(code) < minManualCodeLength {
				return nil, apperror.Validation(fmt.Sprintf("discount code %q must be at least %d characters", code, minManualCodeLength), nil)
			}
			if _, dup := existing[code]; dup {
				continue
			}
			existing[code] = struct{}{}
			newCodes = append(newCodes, code)
		}
	}

	if len(newCodes) == 0 {
		return nil, apperror.Validation("no new unique discount codes were added", nil)
	}

	inserted, err := insertCodes(ctx, tx, campaignID, newCodes)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit codes: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"campaign_id": campaignID,
		"count":       len(inserted),
	}).Info("Discount codes added")

	return inserted, nil
}

// GetCampaignDetail возвращает кампанию, статистику пула и полный список
// кодов с email получателей. Доступно только владельцу.
func (s *CodeService) GetCampaignDetail(ctx context.Context, campaignID uuid.UUID, callerID string) (*models.CampaignDetail, error) {
	campaign, err := s.campaigns.AssertOwner(ctx, campaignID, callerID)
	if err != nil {
		return nil, err
	}

	codes, err := s.listCodes(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	return &models.CampaignDetail{
		Campaign: campaign,
		Stats:    ProjectStats(codes),
		Codes:    codes,
	}, nil
}

func (s *CodeService) listCodes(ctx context.Context, campaignID uuid.UUID) ([]*models.DiscountCode, error) {
	query := `
		SELECT id, campaign_id, code, assigned_to_email, assigned_at, last_claimed_at, created_at
		FROM discount_codes
		WHERE campaign_id = $1
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list codes: %w", err)
	}
	defer rows.Close()

	var codes []*models.DiscountCode
	for rows.Next() {
		c := &models.DiscountCode{}
		if err := rows.Scan(&c.ID, &c.CampaignID, &c.Code, &c.AssignedToEmail, &c.AssignedAt, &c.LastClaimedAt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan code: %w", err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func loadExistingCodes(ctx context.Context, tx *sql.Tx, campaignID uuid.UUID) (map[string]struct{}, error) {
	rows, err := tx.QueryContext(ctx, "SELECT code FROM discount_codes WHERE campaign_id = $1", campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing codes: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan existing code: %w", err)
		}
		existing[code] = struct{}{}
	}
	return existing, rows.Err()
}

func insertCodes(ctx context.Context, tx *sql.Tx, campaignID uuid.UUID, codes []string) ([]*models.DiscountCode, error) {
	now := time.Now()
	inserted := make([]*models.DiscountCode, 0, len(codes))

	for start := 0; start < len(codes); start += codeInsertBatchSize {
		end := start + codeInsertBatchSize
		if end > len(codes) {
			end = len(codes)
		}
		batch := codes[start:end]

		placeholders := make([]string, len(batch))
		args := make([]interface{}, 0, len(batch)*4)
		for i, code := range batch {
			record := &models.DiscountCode{
				ID:         uuid.New(),
				CampaignID: campaignID,
				Code:       code,
				CreatedAt:  now,
			}
			placeholders[i] = fmt.Sprintf("($%d, $%d, $%d, $%d)", i*4+1, i*4+2, i*4+3, i*4+4)
			args = append(args, record.ID, record.CampaignID, record.Code, record.CreatedAt)
			inserted = append(inserted, record)
		}

		query := fmt.Sprintf(`
			INSERT INTO discount_codes (id, campaign_id, code, created_at)
			VALUES %s
		`, strings.Join(placeholders, ", "))

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("failed to insert codes: %w", err)
		}
	}

	return inserted, nil
}

func validateAddCodesPayload(req *models.AddCodesRequest, maxGenerate int) error {
	hasCodes := len(req.Codes) > 0
	hasGenerate := req.Generate != 0

	if hasCodes == hasGenerate {
		return fmt.Errorf("exactly one of codes or generate must be provided")
	}
	if hasGenerate && (req.Generate < 1 || req.Generate > maxGenerate) {
		return fmt.Errorf("generate must be between 1 and %d", maxGenerate)
	}
	return nil
}
