package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/zikrya/Showdrop/internal/apperror"
	"github.com/zikrya/Showdrop/internal/models"
)

func TestCodeHandler_AddCodes_Success(t *testing.T) {
	campaignID := uuid.New()
	codes := []*models.DiscountCode{
		{ID: uuid.New(), CampaignID: campaignID, Code: "SUMMER2026"},
		{ID: uuid.New(), CampaignID: campaignID, Code: "WINTER2026"},
	}
	producer := &stubProducer{}
	h := NewCodeHandler(&stubCodeService{codes: codes}, producer, &stubIdentity{userID: "user_1"}, newHandlerLogger())

	body := bytes.NewBufferString(`{"codes":["SUMMER2026","WINTER2026"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns/"+campaignID.String()+"/codes", body)
	rr := httptest.NewRecorder()

	h.Codes(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if !producer.added {
		t.Fatalf("expected codes added event published")
	}

	var resp struct {
		Added int                    `json:"added"`
		Codes []*models.DiscountCode `json:"codes"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Added != 2 || len(resp.Codes) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCodeHandler_AddCodes_Unauthorized(t *testing.T) {
	h := NewCodeHandler(&stubCodeService{}, &stubProducer{}, &stubIdentity{}, newHandlerLogger())

	body := bytes.NewBufferString(`{"generate":10}`)
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns/"+uuid.NewString()+"/codes", body)
	rr := httptest.NewRecorder()

	h.Codes(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestCodeHandler_AddCodes_Forbidden(t *testing.T) {
	svc := &stubCodeService{err: apperror.Forbidden("you are not the owner of this campaign", nil)}
	producer := &stubProducer{}
	h := NewCodeHandler(svc, producer, &stubIdentity{userID: "user_2"}, newHandlerLogger())

	body := bytes.NewBufferString(`{"generate":10}`)
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns/"+uuid.NewString()+"/codes", body)
	rr := httptest.NewRecorder()

	h.Codes(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if producer.added {
		t.Fatalf("event must not be published on failure")
	}
}

func TestCodeHandler_AddCodes_InvalidBody(t *testing.T) {
	h := NewCodeHandler(&stubCodeService{}, &stubProducer{}, &stubIdentity{userID: "user_1"}, newHandlerLogger())

	body := bytes.NewBufferString(`{not json`)
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns/"+uuid.NewString()+"/codes", body)
	rr := httptest.NewRecorder()

	h.Codes(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCodeHandler_Detail_Success(t *testing.T) {
	campaignID := uuid.New()
	detail := &models.CampaignDetail{
		Campaign: &models.Campaign{ID: campaignID, Name: "Drop A", CreatedBy: "user_1"},
		Stats:    models.CodeStats{Total: 2, Claimed: 1, Remaining: 1},
		Codes: []*models.DiscountCode{
			{ID: uuid.New(), CampaignID: campaignID, Code: "SUMMER2026"},
			{ID: uuid.New(), CampaignID: campaignID, Code: "WINTER2026"},
		},
	}
	h := NewCodeHandler(&stubCodeService{detail: detail}, &stubProducer{}, &stubIdentity{userID: "user_1"}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/campaigns/"+campaignID.String()+"/codes", nil)
	rr := httptest.NewRecorder()

	h.Codes(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp models.CampaignDetail
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Stats.Total != 2 || resp.Stats.Remaining != 1 {
		t.Fatalf("unexpected stats: %+v", resp.Stats)
	}
}

func TestCodeHandler_MethodNotAllowed(t *testing.T) {
	h := NewCodeHandler(&stubCodeService{}, &stubProducer{}, &stubIdentity{userID: "user_1"}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodPut, "/api/campaigns/"+uuid.NewString()+"/codes", nil)
	rr := httptest.NewRecorder()

	h.Codes(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
