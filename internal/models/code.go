package models

import (
	"time"

	"github.com/google/uuid"
)

// DiscountCode представляет скидочный код в пуле кампании.
// Код либо свободен (AssignedToEmail и AssignedAt оба nil), либо выдан
// (оба заполнены); выданный код никогда не возвращается в пул.
type DiscountCode struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	CampaignID      uuid.UUID  `json:"campaign_id" db:"campaign_id"`
	Code            string     `json:"code" db:"code"`
	AssignedToEmail *string    `json:"assigned_to_email,omitempty" db:"assigned_to_email"`
	AssignedAt      *time.Time `json:"assigned_at,omitempty" db:"assigned_at"`
	LastClaimedAt   *time.Time `json:"last_claimed_at,omitempty" db:"last_claimed_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// Claimed сообщает, выдан ли код.
func (c *DiscountCode) Claimed() bool {
	return c.AssignedToEmail != nil
}

// AddCodesRequest описывает запрос на пополнение пула кодов.
// Заполняется ровно одно из полей: Codes (ручной ввод) или Generate (количество).
type AddCodesRequest struct {
	Codes    []string `json:"codes,omitempty"`
	Generate int      `json:"generate,omitempty"`
}

// ClaimRequest описывает запрос на получение кода.
type ClaimRequest struct {
	Email string `json:"email"`
}

// CodeStats агрегирует состояние пула кодов кампании.
type CodeStats struct {
	Total     int `json:"total"`
	Claimed   int `json:"claimed"`
	Remaining int `json:"remaining"`
}
