package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType представляет тип доменного события.
type EventType string

const (
	EventTypeCampaignCreated EventType = "campaign.created"
	EventTypeCampaignDeleted EventType = "campaign.deleted"
	EventTypeCodesAdded      EventType = "codes.added"
	EventTypeCodeClaimed     EventType = "code.claimed"
)

// Event представляет доменное событие для Kafka.
type Event struct {
	ID        uuid.UUID              `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
