package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/zikrya/Showdrop/internal/models"
)

// ----- Campaigns -----

type CampaignService interface {
	CreateCampaign(ctx context.Context, req *models.CreateCampaignRequest, creatorID string) (*models.Campaign, error)
	GetCampaign(ctx context.Context, campaignID uuid.UUID) (*models.Campaign, error)
	ListCampaigns(ctx context.Context, limit, offset int) ([]*models.Campaign, error)
	ListCampaignsByCreator(ctx context.Context, creatorID string) ([]*models.Campaign, error)
	DeleteCampaign(ctx context.Context, campaignID uuid.UUID, callerID string) error
}

// ----- Codes -----

type CodeService interface {
	AddCodes(ctx context.Context, campaignID uuid.UUID, callerID string, req *models.AddCodesRequest) ([]*models.DiscountCode, error)
	GetCampaignDetail(ctx context.Context, campaignID uuid.UUID, callerID string) (*models.CampaignDetail, error)
}

// ----- Claims -----

type ClaimService interface {
	Claim(ctx context.Context, campaignID uuid.UUID, email string) (*models.DiscountCode, error)
}

// ----- Events -----

type EventProducer interface {
	PublishCampaignCreated(campaign *models.Campaign) error
	PublishCampaignDeleted(campaignID uuid.UUID) error
	PublishCodesAdded(campaignID uuid.UUID, count int) error
	PublishCodeClaimed(campaignID, codeID uuid.UUID) error
}

// ----- Auth -----

type IdentityProvider interface {
	Identify(r *http.Request) (string, bool)
}

// ----- Cache -----

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

// ----- Health -----

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}
