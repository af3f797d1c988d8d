package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/zikrya/Showdrop/internal/logger"
	"github.com/zikrya/Showdrop/internal/models"
)

var (
	errEmailRequired = errors.New("email is required")
	errEmailInvalid  = errors.New("invalid email address")
)

// ClaimHandler обслуживает публичную выдачу кодов.
type ClaimHandler struct {
	claimService ClaimService
	producer     EventProducer
	log          *logger.Logger
}

// NewClaimHandler создает новый обработчик выдачи.
func NewClaimHandler(claimService ClaimService, producer EventProducer, log *logger.Logger) *ClaimHandler {
	return &ClaimHandler{
		claimService: claimService,
		producer:     producer,
		log:          log,
	}
}

// Claim обрабатывает POST /api/campaigns/{id}/claim: привязывает один
// свободный код кампании к email из тела запроса.
func (h *ClaimHandler) Claim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	campaignID, err := extractUUIDFromPath(r.URL.Path, "/api/campaigns/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	code, err := h.claimService.Claim(r.Context(), campaignID, email)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to claim discount code")
		return
	}

	if err := h.producer.PublishCodeClaimed(campaignID, code.ID); err != nil {
		h.log.WithError(err).Error("Failed to publish code claimed event")
	}

	writeJSONResponse(w, http.StatusOK, code)
}

// normalizeEmail проверяет формат адреса и приводит его к нижнему регистру,
// чтобы проверка повторной выдачи не обходилась сменой регистра.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errEmailInvalid
	}
	return email, nil
}
