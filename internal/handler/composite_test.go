package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/actuallystonmai/product-composite-service/internal/domain"
	"github.com/actuallystonmai/product-composite-service/internal/service"
	"github.com/actuallystonmai/product-composite-service/internal/serviceaddr"
)

const productIDOK = 1

type stubGateway struct {
	productErr error
}

func (s *stubGateway) GetProduct(ctx context.Context, productID int) (*domain.Product, error) {
	if s.productErr != nil {
		return nil, s.productErr
	}
	if productID != productIDOK {
		return nil, domain.ErrProductNotFound
	}
	return &domain.Product{ProductID: productIDOK, Name: "name", Weight: 1, ServiceAddress: "mock-address"}, nil
}

func (s *stubGateway) GetRecommendations(ctx context.Context, productID int) ([]domain.Recommendation, error) {
	return []domain.Recommendation{{ProductID: productID, RecommendationID: 1, Author: "author", Rate: 1, Content: "content", ServiceAddress: "mock address"}}, nil
}

func (s *stubGateway) GetReviews(ctx context.Context, productID int) ([]domain.Review, error) {
	return []domain.Review{{ProductID: productID, ReviewID: 1, Author: "author", Subject: "subject", Content: "content", ServiceAddress: "mock address"}}, nil
}

func setupRouter(t *testing.T, gw *stubGateway) http.Handler {
	t.Helper()
	svc := service.NewService(gw, serviceaddr.Static("composite-test"), nil, service.Options{})
	h := NewHandler(svc, nil)
	h.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	r := chi.NewRouter()
	r.Get("/product-composite/{productId}", h.GetProductComposite)
	r.Get("/product-composite", h.GetProductComposites)
	return r
}

func doGet(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGetProductByID(t *testing.T) {
	rr := doGet(setupRouter(t, &stubGateway{}), "/product-composite/1")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}

	var body struct {
		ProductID        int               `json:"productId"`
		Recommendations  []json.RawMessage `json:"recommendations"`
		Reviews          []json.RawMessage `json:"reviews"`
		ServiceAddresses map[string]string `json:"serviceAddresses"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ProductID != productIDOK {
		t.Errorf("expected productId 1, got %d", body.ProductID)
	}
	if len(body.Recommendations) != 1 {
		t.Errorf("expected 1 recommendation, got %d", len(body.Recommendations))
	}
	if len(body.Reviews) != 1 {
		t.Errorf("expected 1 review, got %d", len(body.Reviews))
	}
	if body.ServiceAddresses["cmp"] != "composite-test" || body.ServiceAddresses["pro"] != "mock-address" {
		t.Errorf("unexpected service addresses %v", body.ServiceAddresses)
	}
}

func TestGetProductNotFound(t *testing.T) {
	rr := doGet(setupRouter(t, &stubGateway{}), "/product-composite/404")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	var body ErrorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Path != "/product-composite/404" {
		t.Errorf("expected request path, got %s", body.Path)
	}
	if body.Message != "No product found for product id: 404" {
		t.Errorf("unexpected message %q", body.Message)
	}
	if body.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected httpStatus 404, got %d", body.HTTPStatus)
	}
	if body.Timestamp != "2024-01-02T03:04:05Z" {
		t.Errorf("unexpected timestamp %s", body.Timestamp)
	}
}

func TestGetProductInvalidInput(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	for _, path := range []string{"/product-composite/abc", "/product-composite/-1"} {
		rr := doGet(router, path)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: expected 422, got %d", path, rr.Code)
			continue
		}
		var body ErrorBody
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Path != path {
			t.Errorf("expected path %s, got %s", path, body.Path)
		}
	}
}

func TestGetProductUpstreamFailure(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	gw := &stubGateway{productErr: domain.UpstreamFailure(cause, "product service: %v", cause)}

	rr := doGet(setupRouter(t, gw), "/product-composite/1")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "internal_error" {
		t.Errorf("unexpected error code %s", body.Error)
	}
}

func TestGetProductComposites(t *testing.T) {
	router := setupRouter(t, &stubGateway{})

	rr := doGet(router, "/product-composite?ids=1,404")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body domain.BatchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Summary.SuccessCount != 1 || body.Summary.FailedCount != 1 {
		t.Errorf("unexpected summary %+v", body.Summary)
	}
	if body.Results[1].Error != "not_found" {
		t.Errorf("expected not_found for 404, got %+v", body.Results[1])
	}

	rr = doGet(router, "/product-composite")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing ids: expected 422, got %d", rr.Code)
	}
}
