package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zikrya/Showdrop/internal/apperror"
	"github.com/zikrya/Showdrop/internal/database"
	"github.com/zikrya/Showdrop/internal/logger"
	"github.com/zikrya/Showdrop/internal/models"
)

// CampaignService управляет кампаниями и проверкой владельца.
type CampaignService struct {
	db  *database.DB
	log *logger.Logger
}

// NewCampaignService создает сервис кампаний.
func NewCampaignService(db *database.DB, log *logger.Logger) *CampaignService {
	return &CampaignService{
		db:  db,
		log: log,
	}
}

// CreateCampaign создает новую кампанию от имени creatorID.
func (s *CampaignService) CreateCampaign(ctx context.Context, req *models.CreateCampaignRequest, creatorID string) (*models.Campaign, error) {
	if err := validateCampaignPayload(req, creatorID); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	campaign := &models.Campaign{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		BrandName:   strings.TrimSpace(req.BrandName),
		Location:    strings.TrimSpace(req.Location),
		CreatedBy:   creatorID,
		CreatedAt:   time.Now(),
	}

	query := `
		INSERT INTO campaigns (id, name, description, brand_name, location, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query, campaign.ID, campaign.Name, campaign.Description,
		campaign.BrandName, campaign.Location, campaign.CreatedBy, campaign.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	s.log.WithField("campaign_id", campaign.ID).Info("Campaign created")
	return campaign, nil
}

// GetCampaign возвращает кампанию по идентификатору.
func (s *CampaignService) GetCampaign(ctx context.Context, campaignID uuid.UUID) (*models.Campaign, error) {
	query := `
		SELECT id, name, description, brand_name, location, created_by, created_at
		FROM campaigns
		WHERE id = $1
	`

	campaign := &models.Campaign{}
	if err := s.db.QueryRowContext(ctx, query, campaignID).Scan(
		&campaign.ID, &campaign.Name, &campaign.Description, &campaign.BrandName,
		&campaign.Location, &campaign.CreatedBy, &campaign.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("campaign not found", err)
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return campaign, nil
}

// ListCampaigns возвращает все кампании, свежие первыми.
func (s *CampaignService) ListCampaigns(ctx context.Context, limit, offset int) ([]*models.Campaign, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, name, description, brand_name, location, created_by, created_at
		FROM campaigns
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	return scanCampaigns(rows)
}

// ListCampaignsByCreator возвращает кампании, созданные creatorID.
func (s *CampaignService) ListCampaignsByCreator(ctx context.Context, creatorID string) ([]*models.Campaign, error) {
	query := `
		SELECT id, name, description, brand_name, location, created_by, created_at
		FROM campaigns
		WHERE created_by = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns by creator: %w", err)
	}
	defer rows.Close()

	return scanCampaigns(rows)
}

// AssertOwner загружает кампанию и проверяет, что callerID — её создатель.
// Используется перед пополнением пула, просмотром деталей и удалением;
// claim-путь через эту проверку не проходит.
func (s *CampaignService) AssertOwner(ctx context.Context, campaignID uuid.UUID, callerID string) (*models.Campaign, error) {
	campaign, err := s.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.CreatedBy != callerID {
		return nil, apperror.Forbidden("you are not the owner of this campaign", nil)
	}
	return campaign, nil
}

// DeleteCampaign удаляет кампанию владельца вместе со всеми кодами пула
// (каскад по внешнему ключу).
func (s *CampaignService) DeleteCampaign(ctx context.Context, campaignID uuid.UUID, callerID string) error {
	if _, err := s.AssertOwner(ctx, campaignID, callerID); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM campaigns WHERE id = $1", campaignID)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("campaign not found", nil)
	}

	s.log.WithField("campaign_id", campaignID).Info("Campaign deleted")
	return nil
}

func scanCampaigns(rows *sql.Rows) ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	for rows.Next() {
		c := &models.Campaign{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.BrandName, &c.Location, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func validateCampaignPayload(req *models.CreateCampaignRequest, creatorID string) error {
	if creatorID == "" {
		return fmt.Errorf("creator identity is required")
	}
	if len(strings.TrimSpace(req.Name)) < 3 {
		return fmt.Errorf("campaign name must be at least 3 characters")
	}
	if strings.TrimSpace(req.BrandName) == "" {
		return fmt.Errorf("brand name is required")
	}
	if strings.TrimSpace(req.Location) == "" {
		return fmt.Errorf("location is required")
	}
	return nil
}
