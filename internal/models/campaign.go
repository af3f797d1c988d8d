package models

import (
	"time"

	"github.com/google/uuid"
)

// Campaign представляет кампанию со скидочными кодами.
type Campaign struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	BrandName   string    `json:"brand_name" db:"brand_name"`
	Location    string    `json:"location" db:"location"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreateCampaignRequest описывает запрос на создание кампании.
type CreateCampaignRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	BrandName   string  `json:"brand_name"`
	Location    string  `json:"location"`
}

// CampaignDetail объединяет кампанию, статистику пула и список кодов.
type CampaignDetail struct {
	Campaign *Campaign       `json:"campaign"`
	Stats    CodeStats       `json:"stats"`
	Codes    []*DiscountCode `json:"codes"`
}
