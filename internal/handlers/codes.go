package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/zikrya/Showdrop/internal/logger"
	"github.com/zikrya/Showdrop/internal/models"
)

// CodeHandler обслуживает пул кодов кампании.
type CodeHandler struct {
	codeService CodeService
	producer    EventProducer
	identity    IdentityProvider
	log         *logger.Logger
}

// NewCodeHandler создает новый обработчик пула кодов.
func NewCodeHandler(codeService CodeService, producer EventProducer, identity IdentityProvider, log *logger.Logger) *CodeHandler {
	return &CodeHandler{
		codeService: codeService,
		producer:    producer,
		identity:    identity,
		log:         log,
	}
}

// Codes обслуживает /api/campaigns/{id}/codes: POST пополняет пул,
// GET возвращает кампанию со статистикой и списком кодов. Оба действия
// доступны только владельцу кампании.
func (h *CodeHandler) Codes(w http.ResponseWriter, r *http.Request) {
	campaignID, err := extractUUIDFromPath(r.URL.Path, "/api/campaigns/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	callerID, ok := h.identity.Identify(r)
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.addCodes(w, r, campaignID, callerID)
	case http.MethodGet:
		h.campaignDetail(w, r, campaignID, callerID)
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *CodeHandler) addCodes(w http.ResponseWriter, r *http.Request, campaignID uuid.UUID, callerID string) {
	var req models.AddCodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	inserted, err := h.codeService.AddCodes(r.Context(), campaignID, callerID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to add discount codes")
		return
	}

	if err := h.producer.PublishCodesAdded(campaignID, len(inserted)); err != nil {
		h.log.WithError(err).Error("Failed to publish codes added event")
	}

	writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"added": len(inserted),
		"codes": inserted,
	})
}

func (h *CodeHandler) campaignDetail(w http.ResponseWriter, r *http.Request, campaignID uuid.UUID, callerID string) {
	detail, err := h.codeService.GetCampaignDetail(r.Context(), campaignID, callerID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get campaign detail")
		return
	}

	writeJSONResponse(w, http.StatusOK, detail)
}
