package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangreguerrer/Netology-Final/api/middleware"
	basketsvc "github.com/sangreguerrer/Netology-Final/internal/basket"
	pkgerrors "github.com/sangreguerrer/Netology-Final/pkg/errors"
)

type stubBasketService struct {
	view    *basketsvc.View
	result  *basketsvc.MutationResult
	deleted int64
	err     error

	gotEntries []basketsvc.ItemEntry
	gotRawIDs  string
}

func (s *stubBasketService) Get(context.Context, uuid.UUID) (*basketsvc.View, error) {
	return s.view, s.err
}

func (s *stubBasketService) AddItems(_ context.Context, _ uuid.UUID, entries []basketsvc.ItemEntry) (*basketsvc.MutationResult, error) {
	s.gotEntries = entries
	return s.result, s.err
}

func (s *stubBasketService) UpdateItems(_ context.Context, _ uuid.UUID, entries []basketsvc.ItemEntry) (*basketsvc.MutationResult, error) {
	s.gotEntries = entries
	return s.result, s.err
}

func (s *stubBasketService) RemoveItems(_ context.Context, _ uuid.UUID, rawIDs string) (int64, error) {
	s.gotRawIDs = rawIDs
	return s.deleted, s.err
}

func authedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	}
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func TestBasketGetSuccess(t *testing.T) {
	view := &basketsvc.View{
		OrderID: uuid.New(),
		Total:   decimal.NewFromInt(450),
	}
	handler := BasketGet(&stubBasketService{view: view}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/basket", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data basketsvc.View `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderID != view.OrderID {
		t.Fatalf("unexpected order id: %s", envelope.Data.OrderID)
	}
}

func TestBasketGetRequiresUserContext(t *testing.T) {
	handler := BasketGet(&stubBasketService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/basket", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestBasketAddForwardsEntries(t *testing.T) {
	productInfoID := uuid.New()
	svc := &stubBasketService{result: &basketsvc.MutationResult{Applied: 1}}
	handler := BasketAdd(svc, nil)

	body := []byte(fmt.Sprintf(`{"items":[{"product_info_id":%q,"quantity":3}]}`, productInfoID))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/basket", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.gotEntries) != 1 || svc.gotEntries[0].ProductInfoID != productInfoID || svc.gotEntries[0].Quantity != 3 {
		t.Fatalf("unexpected entries: %+v", svc.gotEntries)
	}
}

func TestBasketAddRejectsMalformedBody(t *testing.T) {
	handler := BasketAdd(&stubBasketService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/basket", []byte(`{"items":`)))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBasketAddReportsPartialSuccess(t *testing.T) {
	productInfoID := uuid.New()
	result := &basketsvc.MutationResult{
		Applied: 0,
		Errors: []basketsvc.EntryError{{
			Index:         0,
			ProductInfoID: productInfoID,
			Code:          pkgerrors.CodeInsufficientStock,
			Message:       "quantity exceeds stock",
		}},
	}
	handler := BasketAdd(&stubBasketService{result: result}, nil)

	body := []byte(fmt.Sprintf(`{"items":[{"product_info_id":%q,"quantity":20}]}`, productInfoID))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/basket", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data basketsvc.MutationResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Applied != 0 || len(envelope.Data.Errors) != 1 {
		t.Fatalf("unexpected result: %+v", envelope.Data)
	}
	if envelope.Data.Errors[0].Code != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error code: %s", envelope.Data.Errors[0].Code)
	}
}

func TestBasketRemovePassesRawIDList(t *testing.T) {
	svc := &stubBasketService{deleted: 1}
	handler := BasketRemove(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodDelete, "/api/v1/basket", []byte(`{"items":"3,99"}`)))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotRawIDs != "3,99" {
		t.Fatalf("expected raw id list forwarded, got %q", svc.gotRawIDs)
	}
	var envelope struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["deleted"] != 1 {
		t.Fatalf("expected deleted count 1, got %d", envelope.Data["deleted"])
	}
}
