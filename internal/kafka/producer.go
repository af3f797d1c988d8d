package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/zikrya/Showdrop/internal/config"
	"github.com/zikrya/Showdrop/internal/logger"
	"github.com/zikrya/Showdrop/internal/models"
)

// Producer публикует доменные события в Kafka.
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает синхронный Kafka producer.
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.WithField("brokers", cfg.Brokers).Info("Kafka producer created")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// Close закрывает producer.
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// PublishCampaignCreated публикует событие создания кампании.
func (p *Producer) PublishCampaignCreated(campaign *models.Campaign) error {
	return p.publishEvent(p.topics.Campaigns, models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeCampaignCreated,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"campaign_id": campaign.ID.String(),
			"name":        campaign.Name,
			"brand_name":  campaign.BrandName,
			"created_by":  campaign.CreatedBy,
		},
	})
}

// PublishCampaignDeleted публикует событие удаления кампании.
func (p *Producer) PublishCampaignDeleted(campaignID uuid.UUID) error {
	return p.publishEvent(p.topics.Campaigns, models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeCampaignDeleted,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"campaign_id": campaignID.String(),
		},
	})
}

// PublishCodesAdded публикует событие пополнения пула кодов.
func (p *Producer) PublishCodesAdded(campaignID uuid.UUID, count int) error {
	return p.publishEvent(p.topics.Codes, models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeCodesAdded,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"campaign_id": campaignID.String(),
			"count":       count,
		},
	})
}

// PublishCodeClaimed публикует событие выдачи кода.
func (p *Producer) PublishCodeClaimed(campaignID, codeID uuid.UUID) error {
	return p.publishEvent(p.topics.Claims, models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeCodeClaimed,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"campaign_id": campaignID.String(),
			"code_id":     codeID.String(),
		},
	})
}

// publishEvent сериализует событие и отправляет его в топик.
func (p *Producer) publishEvent(topic string, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.ID.String()),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":     topic,
		"type":      event.Type,
		"partition": partition,
		"offset":    offset,
	}).Debug("Event published")

	return nil
}
