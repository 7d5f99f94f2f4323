package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"credit-control/internal/api/handler/dto"
	"credit-control/internal/domain/customer"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	var cust *customer.Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*customer.Customer)
	}
	return cust, args.Error(1)
}

func (m *MockCustomerService) GetCustomerByCode(ctx context.Context, customerCode string) (*customer.Customer, error) {
	args := m.Called(ctx, customerCode)
	var cust *customer.Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*customer.Customer)
	}
	return cust, args.Error(1)
}

func (m *MockCustomerService) SearchCustomers(ctx context.Context, query string, page, size int, includeInactive bool) (*customer.Page, error) {
	args := m.Called(ctx, query, page, size, includeInactive)
	var result *customer.Page
	if args.Get(0) != nil {
		result = args.Get(0).(*customer.Page)
	}
	return result, args.Error(1)
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, input customer.CreateCustomerInput) (*customer.Customer, error) {
	args := m.Called(ctx, input)
	var cust *customer.Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*customer.Customer)
	}
	return cust, args.Error(1)
}

func (m *MockCustomerService) UpdateCustomer(ctx context.Context, customerID int64, input customer.CreateCustomerInput) (*customer.Customer, error) {
	args := m.Called(ctx, customerID, input)
	var cust *customer.Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*customer.Customer)
	}
	return cust, args.Error(1)
}

func (m *MockCustomerService) DeactivateCustomer(ctx context.Context, customerID int64, deactivatedBy string) error {
	args := m.Called(ctx, customerID, deactivatedBy)
	return args.Error(0)
}

func (m *MockCustomerService) ActivateCustomer(ctx context.Context, customerID int64, activatedBy string) error {
	args := m.Called(ctx, customerID, activatedBy)
	return args.Error(0)
}

func (m *MockCustomerService) GetCustomerStats(ctx context.Context) (*customer.Stats, error) {
	args := m.Called(ctx)
	var stats *customer.Stats
	if args.Get(0) != nil {
		stats = args.Get(0).(*customer.Stats)
	}
	return stats, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(svc customer.CustomerService) *CustomerHandler {
	return NewCustomerHandler(svc, testLogger())
}

func serveWithURLParams(h http.HandlerFunc, r *http.Request, params map[string]string) *httptest.ResponseRecorder {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) dto.APIResponse {
	t.Helper()
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sampleCustomer() *customer.Customer {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &customer.Customer{
		CustomerID:   1,
		CustomerCode: "ACME01",
		CompanyName:  "Acme Industries",
		Status:       customer.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestGetCustomerHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(MockCustomerService)
		h := newTestHandler(mockSvc)

		mockSvc.On("GetCustomer", mock.Anything, int64(1)).Return(sampleCustomer(), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/customers/1", nil)
		w := serveWithURLParams(h.GetCustomer, req, map[string]string{"customerID": "1"})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeEnvelope(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, "Customer retrieved successfully", resp.Message)
		assert.NotNil(t, resp.Data)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(MockCustomerService)
		h := newTestHandler(mockSvc)

		mockSvc.On("GetCustomer", mock.Anything, int64(99)).Return(nil, customer.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/customers/99", nil)
		w := serveWithURLParams(h.GetCustomer, req, map[string]string{"customerID": "99"})

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeEnvelope(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "Customer not found", resp.Message)
	})

	t.Run("invalid id", func(t *testing.T) {
		mockSvc := new(MockCustomerService)
		h := newTestHandler(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/customers/abc", nil)
		w := serveWithURLParams(h.GetCustomer, req, map[string]string{"customerID": "abc"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockSvc.AssertNotCalled(t, "GetCustomer", mock.Anything, mock.Anything)
	})
}

func TestGetCustomerByCodeHandler(t *testing.T) {
	mockSvc := new(MockCustomerService)
	h := newTestHandler(mockSvc)

	mockSvc.On("GetCustomerByCode", mock.Anything, "ACME01").Return(sampleCustomer(), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/customers/code/ACME01", nil)
	w := serveWithURLParams(h.GetCustomerByCode, req, map[string]string{"customerCode": "ACME01"})

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestSearchCustomersHandler(t *testing.T) {
	mockSvc := new(MockCustomerService)
	h := newTestHandler(mockSvc)

	page := &customer.Page{
		Content:       []*customer.Customer{sampleCustomer()},
		TotalElements: 1,
		Page:          0,
		Size:          10,
	}
	mockSvc.On("SearchCustomers", mock.Anything, "acme", 0, 10, false).Return(page, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/customers/search?q=acme", nil)
	w := httptest.NewRecorder()
	h.SearchCustomers(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "Found 1 customers", resp.Message)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var pageResp dto.PageResponse
	require.NoError(t, json.Unmarshal(raw, &pageResp))
	assert.Equal(t, int64(1), pageResp.TotalElements)
	assert.Equal(t, 1, pageResp.TotalPages)
	assert.True(t, pageResp.First)
	assert.True(t, pageResp.Last)
	mockSvc.AssertExpectations(t)
}

func TestSearchCustomersHandlerQueryAlias(t *testing.T) {
	mockSvc := new(MockCustomerService)
	h := newTestHandler(mockSvc)

	page := &customer.Page{Content: []*customer.Customer{}, TotalElements: 0, Page: 0, Size: 10}
	mockSvc.On("SearchCustomers", mock.Anything, "acme", 0, 10, false).Return(page, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/customers/search?query=acme", nil)
	w := httptest.NewRecorder()
	h.SearchCustomers(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestListCustomersHandlerPageParams(t *testing.T) {
	mockSvc := new(MockCustomerService)
	h := newTestHandler(mockSvc)

	page := &customer.Page{Content: []*customer.Customer{}, TotalElements: 0, Page: 2, Size: 5}
	mockSvc.On("SearchCustomers", mock.Anything, "", 2, 5, true).Return(page, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/customers?page=2&size=5&includeInactive=true", nil)
	w := httptest.NewRecorder()
	h.ListCustomers(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "Retrieved 0 active customers", resp.Message)
	mockSvc.AssertExpectations(t)
}

func TestCreateCustomerHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		mockSvc := new(MockCustomerService)
		h := newTestHandler(mockSvc)

		mockSvc.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(in customer.CreateCustomerInput) bool {
			return in.CustomerCode == "ACME01" && in.CompanyName == "Acme Industries"
		})).Return(sampleCustomer(), nil).Once()

		body := bytes.NewBufferString(`{"customerCode":"ACME01","companyName":"Acme Industries"}`)
		req := httptest.NewRequest(http.MethodPost, "/customers", body)
		w := httptest.NewRecorder()
		h.CreateCustomer(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeEnvelope(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, "Customer created successfully", resp.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("duplicate code", func(t *testing.T) {
		mockSvc := new(MockCustomerService)
		h := newTestHandler(mockSvc)

		mockSvc.On("CreateCustomer", mock.Anything, mock.Anything).
			Return(nil, customer.ErrDuplicateCode).Once()

		body := bytes.NewBufferString(`{"customerCode":"ACME01","companyName":"Acme Industries"}`)
		req := httptest.NewRequest(http.MethodPost, "/customers", body)
		w := httptest.NewRecorder()
		h.CreateCustomer(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeEnvelope(t, w)
		assert.Equal(t, "Customer code already exists", resp.Message)
	})

	t.Run("validation failure", func(t *testing.T) {
		mockSvc := new(MockCustomerService)
		h := newTestHandler(mockSvc)

		body := bytes.NewBufferString(`{"customerCode":"x","companyName":"Acme Industries"}`)
		req := httptest.NewRequest(http.MethodPost, "/customers", body)
		w := httptest.NewRecorder()
		h.CreateCustomer(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockSvc.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		mockSvc := new(MockCustomerService)
		h := newTestHandler(mockSvc)

		body := bytes.NewBufferString(`{"customerCode": `)
		req := httptest.NewRequest(http.MethodPost, "/customers", body)
		w := httptest.NewRecorder()
		h.CreateCustomer(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		mockSvc := new(MockCustomerService)
		h := newTestHandler(mockSvc)

		body := bytes.NewBufferString(`{"customerCode":"ACME01","companyName":"Acme Industries","bogus":1}`)
		req := httptest.NewRequest(http.MethodPost, "/customers", body)
		w := httptest.NewRecorder()
		h.CreateCustomer(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateCustomerHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(MockCustomerService)
		h := newTestHandler(mockSvc)

		mockSvc.On("UpdateCustomer", mock.Anything, int64(1), mock.Anything).
			Return(sampleCustomer(), nil).Once()

		body := bytes.NewBufferString(`{"customerCode":"ACME01","companyName":"Acme Holdings"}`)
		req := httptest.NewRequest(http.MethodPut, "/customers/1", body)
		w := serveWithURLParams(h.UpdateCustomer, req, map[string]string{"customerID": "1"})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeEnvelope(t, w)
		assert.Equal(t, "Customer updated successfully", resp.Message)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(MockCustomerService)
		h := newTestHandler(mockSvc)

		mockSvc.On("UpdateCustomer", mock.Anything, int64(99), mock.Anything).
			Return(nil, customer.ErrNotFound).Once()

		body := bytes.NewBufferString(`{"customerCode":"ACME01","companyName":"Acme Holdings"}`)
		req := httptest.NewRequest(http.MethodPut, "/customers/99", body)
		w := serveWithURLParams(h.UpdateCustomer, req, map[string]string{"customerID": "99"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeactivateCustomerHandler(t *testing.T) {
	mockSvc := new(MockCustomerService)
	h := newTestHandler(mockSvc)

	mockSvc.On("DeactivateCustomer", mock.Anything, int64(1), "audit-team").Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/customers/1?deactivatedBy=audit-team", nil)
	w := serveWithURLParams(h.DeactivateCustomer, req, map[string]string{"customerID": "1"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "Customer deactivated successfully", resp.Message)
	mockSvc.AssertExpectations(t)
}

func TestActivateCustomerHandlerDefaultsActor(t *testing.T) {
	mockSvc := new(MockCustomerService)
	h := newTestHandler(mockSvc)

	mockSvc.On("ActivateCustomer", mock.Anything, int64(1), "system").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/customers/1/activate", nil)
	w := serveWithURLParams(h.ActivateCustomer, req, map[string]string{"customerID": "1"})

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestGetCustomerStatsHandler(t *testing.T) {
	mockSvc := new(MockCustomerService)
	h := newTestHandler(mockSvc)

	stats := &customer.Stats{
		TotalCustomers:    10,
		ActiveCustomers:   7,
		InactiveCustomers: 3,
		TotalIndustries:   2,
		Industries:        []string{"Finance", "Manufacturing"},
	}
	mockSvc.On("GetCustomerStats", mock.Anything).Return(stats, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/customers/stats", nil)
	w := httptest.NewRecorder()
	h.GetCustomerStats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	require.NotNil(t, resp.Data)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var statsResp dto.StatsResponse
	require.NoError(t, json.Unmarshal(raw, &statsResp))
	assert.Equal(t, int64(10), statsResp.TotalCustomers)
	assert.Equal(t, 2, statsResp.TotalIndustries)
	mockSvc.AssertExpectations(t)
}
