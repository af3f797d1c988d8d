package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/zikrya/Showdrop/internal/logger"
	"github.com/zikrya/Showdrop/internal/models"
	"github.com/zikrya/Showdrop/internal/redis"
)

// CampaignHandler обрабатывает кампании.
type CampaignHandler struct {
	campaignService CampaignService
	producer        EventProducer
	identity        IdentityProvider
	redisClient     RedisClient
	log             *logger.Logger
}

// NewCampaignHandler создает новый обработчик кампаний.
func NewCampaignHandler(campaignService CampaignService, producer EventProducer, identity IdentityProvider, redisClient RedisClient, log *logger.Logger) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		producer:        producer,
		identity:        identity,
		redisClient:     redisClient,
		log:             log,
	}
}

// Campaigns обслуживает коллекцию: POST создает кампанию, GET возвращает список.
func (h *CampaignHandler) Campaigns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createCampaign(w, r)
	case http.MethodGet:
		h.listCampaigns(w, r)
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *CampaignHandler) createCampaign(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.identity.Identify(r)
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	campaign, err := h.campaignService.CreateCampaign(r.Context(), &req, callerID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create campaign")
		return
	}

	// Событие публикуется после фиксации; отказ брокера не откатывает кампанию.
	if err := h.producer.PublishCampaignCreated(campaign); err != nil {
		h.log.WithError(err).Error("Failed to publish campaign created event")
	}

	writeJSONResponse(w, http.StatusCreated, campaign)
}

func (h *CampaignHandler) listCampaigns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	campaigns, err := h.campaignService.ListCampaigns(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list campaigns")
		return
	}
	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}

	writeJSONResponse(w, http.StatusOK, campaigns)
}

// MyCampaigns возвращает кампании, созданные вызывающим.
func (h *CampaignHandler) MyCampaigns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	callerID, ok := h.identity.Identify(r)
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	campaigns, err := h.campaignService.ListCampaignsByCreator(r.Context(), callerID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list campaigns")
		return
	}
	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}

	writeJSONResponse(w, http.StatusOK, campaigns)
}

// CampaignByID обслуживает одну кампанию: GET возвращает метаданные,
// DELETE удаляет кампанию владельца вместе с пулом кодов.
func (h *CampaignHandler) CampaignByID(w http.ResponseWriter, r *http.Request) {
	campaignID, err := extractUUIDFromPath(r.URL.Path, "/api/campaigns/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getCampaign(w, r, campaignID)
	case http.MethodDelete:
		h.deleteCampaign(w, r, campaignID)
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *CampaignHandler) getCampaign(w http.ResponseWriter, r *http.Request, campaignID uuid.UUID) {
	cacheKey := redis.GenerateKey(redis.KeyPrefixCampaign, campaignID.String())

	var cached models.Campaign
	if err := h.redisClient.Get(r.Context(), cacheKey, &cached); err == nil {
		writeJSONResponse(w, http.StatusOK, &cached)
		return
	}

	campaign, err := h.campaignService.GetCampaign(r.Context(), campaignID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get campaign")
		return
	}

	if err := h.redisClient.Set(r.Context(), cacheKey, campaign, defaultCacheTTL); err != nil {
		h.log.WithError(err).Warn("Failed to cache campaign")
	}

	writeJSONResponse(w, http.StatusOK, campaign)
}

func (h *CampaignHandler) deleteCampaign(w http.ResponseWriter, r *http.Request, campaignID uuid.UUID) {
	callerID, ok := h.identity.Identify(r)
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.campaignService.DeleteCampaign(r.Context(), campaignID, callerID); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete campaign")
		return
	}

	if err := h.redisClient.Delete(r.Context(), redis.GenerateKey(redis.KeyPrefixCampaign, campaignID.String())); err != nil {
		h.log.WithError(err).Warn("Failed to invalidate campaign cache")
	}

	if err := h.producer.PublishCampaignDeleted(campaignID); err != nil {
		h.log.WithError(err).Error("Failed to publish campaign deleted event")
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Campaign deleted"})
}
