package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zikrya/Showdrop/internal/apperror"
	"github.com/zikrya/Showdrop/internal/config"
	"github.com/zikrya/Showdrop/internal/logger"
	"github.com/zikrya/Showdrop/internal/models"
)

func newHandlerLogger() *logger.Logger {
	return logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
}

type stubCampaignService struct {
	campaign  *models.Campaign
	campaigns []*models.Campaign
	err       error
	deleted   bool
}

func (s *stubCampaignService) CreateCampaign(ctx context.Context, req *models.CreateCampaignRequest, creatorID string) (*models.Campaign, error) {
	return s.campaign, s.err
}
func (s *stubCampaignService) GetCampaign(ctx context.Context, campaignID uuid.UUID) (*models.Campaign, error) {
	return s.campaign, s.err
}
func (s *stubCampaignService) ListCampaigns(ctx context.Context, limit, offset int) ([]*models.Campaign, error) {
	return s.campaigns, s.err
}
func (s *stubCampaignService) ListCampaignsByCreator(ctx context.Context, creatorID string) ([]*models.Campaign, error) {
	return s.campaigns, s.err
}
func (s *stubCampaignService) DeleteCampaign(ctx context.Context, campaignID uuid.UUID, callerID string) error {
	s.deleted = true
	return s.err
}

type stubCodeService struct {
	codes  []*models.DiscountCode
	detail *models.CampaignDetail
	err    error
}

func (s *stubCodeService) AddCodes(ctx context.Context, campaignID uuid.UUID, callerID string, req *models.AddCodesRequest) ([]*models.DiscountCode, error) {
	return s.codes, s.err
}
func (s *stubCodeService) GetCampaignDetail(ctx context.Context, campaignID uuid.UUID, callerID string) (*models.CampaignDetail, error) {
	return s.detail, s.err
}

type stubClaimService struct {
	code *models.DiscountCode
	err  error
}

func (s *stubClaimService) Claim(ctx context.Context, campaignID uuid.UUID, email string) (*models.DiscountCode, error) {
	return s.code, s.err
}

type stubProducer struct {
	created bool
	deleted bool
	added   bool
	claimed bool
}

func (p *stubProducer) PublishCampaignCreated(campaign *models.Campaign) error {
	p.created = true
	return nil
}
func (p *stubProducer) PublishCampaignDeleted(campaignID uuid.UUID) error {
	p.deleted = true
	return nil
}
func (p *stubProducer) PublishCodesAdded(campaignID uuid.UUID, count int) error {
	p.added = true
	return nil
}
func (p *stubProducer) PublishCodeClaimed(campaignID, codeID uuid.UUID) error {
	p.claimed = true
	return nil
}

type stubIdentity struct {
	userID string
}

func (s *stubIdentity) Identify(r *http.Request) (string, bool) {
	return s.userID, s.userID != ""
}

// stubRedis никогда не находит ключ, записывает без ошибок.
type stubRedis struct {
	set     bool
	deleted bool
}

func (s *stubRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.set = true
	return nil
}
func (s *stubRedis) Get(ctx context.Context, key string, dest interface{}) error {
	return apperror.NotFound("cache miss", nil)
}
func (s *stubRedis) Delete(ctx context.Context, key string) error {
	s.deleted = true
	return nil
}

func TestCampaignHandler_Create_Success(t *testing.T) {
	campaign := &models.Campaign{ID: uuid.New(), Name: "Summer Drop", BrandName: "Acme", CreatedBy: "user_1"}
	producer := &stubProducer{}
	h := NewCampaignHandler(&stubCampaignService{campaign: campaign}, producer, &stubIdentity{userID: "user_1"}, &stubRedis{}, newHandlerLogger())

	body := bytes.NewBufferString(`{"name":"Summer Drop","brand_name":"Acme","location":"NYC"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns", body)
	rr := httptest.NewRecorder()

	h.Campaigns(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if !producer.created {
		t.Fatalf("expected campaign created event published")
	}
}

func TestCampaignHandler_Create_Unauthorized(t *testing.T) {
	h := NewCampaignHandler(&stubCampaignService{}, &stubProducer{}, &stubIdentity{}, &stubRedis{}, newHandlerLogger())

	body := bytes.NewBufferString(`{"name":"Summer Drop"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns", body)
	rr := httptest.NewRecorder()

	h.Campaigns(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestCampaignHandler_Create_ValidationError(t *testing.T) {
	svc := &stubCampaignService{err: apperror.Validation("campaign name must be at least 3 characters", nil)}
	h := NewCampaignHandler(svc, &stubProducer{}, &stubIdentity{userID: "user_1"}, &stubRedis{}, newHandlerLogger())

	body := bytes.NewBufferString(`{"name":"ab"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns", body)
	rr := httptest.NewRecorder()

	h.Campaigns(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCampaignHandler_List(t *testing.T) {
	campaigns := []*models.Campaign{{ID: uuid.New(), Name: "Drop A"}}
	h := NewCampaignHandler(&stubCampaignService{campaigns: campaigns}, &stubProducer{}, &stubIdentity{}, &stubRedis{}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/campaigns?limit=10", nil)
	rr := httptest.NewRecorder()

	h.Campaigns(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestCampaignHandler_MyCampaigns_Unauthorized(t *testing.T) {
	h := NewCampaignHandler(&stubCampaignService{}, &stubProducer{}, &stubIdentity{}, &stubRedis{}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/campaigns/mine", nil)
	rr := httptest.NewRecorder()

	h.MyCampaigns(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestCampaignHandler_Get_CachesCampaign(t *testing.T) {
	campaignID := uuid.New()
	campaign := &models.Campaign{ID: campaignID, Name: "Drop A"}
	cache := &stubRedis{}
	h := NewCampaignHandler(&stubCampaignService{campaign: campaign}, &stubProducer{}, &stubIdentity{}, cache, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/campaigns/"+campaignID.String(), nil)
	rr := httptest.NewRecorder()

	h.CampaignByID(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !cache.set {
		t.Fatalf("expected campaign cached after miss")
	}
}

func TestCampaignHandler_Get_NotFound(t *testing.T) {
	svc := &stubCampaignService{err: apperror.NotFound("campaign not found", nil)}
	h := NewCampaignHandler(svc, &stubProducer{}, &stubIdentity{}, &stubRedis{}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/campaigns/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()

	h.CampaignByID(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestCampaignHandler_Get_InvalidID(t *testing.T) {
	h := NewCampaignHandler(&stubCampaignService{}, &stubProducer{}, &stubIdentity{}, &stubRedis{}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/campaigns/not-a-uuid", nil)
	rr := httptest.NewRecorder()

	h.CampaignByID(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCampaignHandler_Delete_Success(t *testing.T) {
	svc := &stubCampaignService{}
	producer := &stubProducer{}
	cache := &stubRedis{}
	h := NewCampaignHandler(svc, producer, &stubIdentity{userID: "user_1"}, cache, newHandlerLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/campaigns/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()

	h.CampaignByID(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !svc.deleted || !producer.deleted || !cache.deleted {
		t.Fatalf("expected delete, event and cache invalidation; got %v %v %v", svc.deleted, producer.deleted, cache.deleted)
	}
}

func TestCampaignHandler_Delete_Forbidden(t *testing.T) {
	svc := &stubCampaignService{err: apperror.Forbidden("you are not the owner of this campaign", nil)}
	producer := &stubProducer{}
	h := NewCampaignHandler(svc, producer, &stubIdentity{userID: "user_2"}, &stubRedis{}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/campaigns/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()

	h.CampaignByID(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if producer.deleted {
		t.Fatalf("event must not be published on failure")
	}
}
