package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"credit-control/internal/api/handler/dto"
	"credit-control/internal/domain/customer"
	"credit-control/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

func getCustomerIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "customerID")
	if idStr == "" {
		return 0, fmt.Errorf("%w: customerID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid customerID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}

func getPageParams(r *http.Request) (page, size int) {
	page, size = 0, 10
	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			page = parsed
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			size = parsed
		}
	}
	return page, size
}

// GetCustomer handles GET /customers/{customerID}
// @Summary Retrieve customer details
// @Description Retrieves details for a specific customer by their numeric ID. Served from cache when possible.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.CustomerResponse} "Customer details retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid customer ID format"
// @Failure 404 {object} dto.APIResponse "Customer not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /customers/{customerID} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received get customer request", slog.Int64("customerID", customerID))

	cust, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, customer.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get customer", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, dto.NewCustomerResponse(cust), "Customer retrieved successfully")
}

// GetCustomerByCode handles GET /customers/code/{customerCode}
// @Summary Retrieve customer details by code
// @Description Retrieves details for a specific customer by their business code. Lookup is case-insensitive.
// @Tags Customers
// @Produce json
// @Param customerCode path string true "Customer code"
// @Success 200 {object} dto.APIResponse{data=dto.CustomerResponse} "Customer details retrieved"
// @Failure 400 {object} dto.APIResponse "Empty customer code"
// @Failure 404 {object} dto.APIResponse "Customer not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /customers/code/{customerCode} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomerByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "customerCode")

	h.logger.DebugContext(r.Context(), "Received get customer by code request", slog.String("customerCode", code))

	cust, err := h.service.GetCustomerByCode(r.Context(), code)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, customer.ErrNotFound) && !errors.Is(err, apperrors.ErrInvalidArgument) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get customer by code", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, dto.NewCustomerResponse(cust), "Customer retrieved successfully")
}

// ListCustomers handles GET /customers
// @Summary List customers
// @Description Retrieves a page of customers ordered by company name. Inactive customers are excluded unless includeInactive=true.
// @Tags Customers
// @Produce json
// @Param page query int false "Zero-based page number" default(0)
// @Param size query int false "Page size, 1-100" default(10)
// @Param includeInactive query bool false "Include inactive customers" default(false)
// @Success 200 {object} dto.APIResponse{data=dto.PageResponse} "Page of customers"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /customers [get]
// @Security BearerAuth
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, size := getPageParams(r)
	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	h.logger.DebugContext(r.Context(), "Received list customers request",
		slog.Int("page", page), slog.Int("size", size), slog.Bool("includeInactive", includeInactive))

	result, err := h.service.SearchCustomers(r.Context(), "", page, size, includeInactive)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list customers", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	resp := dto.NewPageResponse(result)
	respondJSON(w, r, http.StatusOK, resp,
		fmt.Sprintf("Retrieved %d active customers", resp.TotalElements))
}

// SearchCustomers handles GET /customers/search
// @Summary Search customers
// @Description Fuzzy, case-insensitive search across company name and customer code with pagination.
// @Tags Customers
// @Produce json
// @Param q query string false "Search text; empty matches every customer"
// @Param page query int false "Zero-based page number" default(0)
// @Param size query int false "Page size, 1-100" default(10)
// @Param includeInactive query bool false "Include inactive customers" default(false)
// @Success 200 {object} dto.APIResponse{data=dto.PageResponse} "Page of matching customers"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /customers/search [get]
// @Security BearerAuth
func (h *CustomerHandler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		query = r.URL.Query().Get("query")
	}
	page, size := getPageParams(r)
	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	h.logger.DebugContext(r.Context(), "Received search customers request",
		slog.String("query", query), slog.Int("page", page), slog.Int("size", size))

	result, err := h.service.SearchCustomers(r.Context(), query, page, size, includeInactive)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to search customers", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	resp := dto.NewPageResponse(result)
	respondJSON(w, r, http.StatusOK, resp,
		fmt.Sprintf("Found %d customers", resp.TotalElements))
}

// CreateCustomer handles POST /customers
// @Summary Create a new customer
// @Description Creates a new customer record. The customer code is uppercased and must be unique; the ID is assigned by the service.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CreateCustomerRequest true "Customer creation request"
// @Success 201 {object} dto.APIResponse{data=dto.CustomerResponse} "Customer successfully created"
// @Failure 400 {object} dto.APIResponse "Invalid request payload"
// @Failure 409 {object} dto.APIResponse "Customer code already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /customers [post]
// @Security BearerAuth
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received create customer request")

	var req dto.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, r, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	created, err := h.service.CreateCustomer(r.Context(), req.ToInput())
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, customer.ErrDuplicateCode) && !errors.Is(err, apperrors.ErrInvalidArgument) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to create customer", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer created successfully",
		slog.Int64("customerID", created.CustomerID), slog.String("customerCode", created.CustomerCode))
	respondJSON(w, r, http.StatusCreated, dto.NewCustomerResponse(created), "Customer created successfully")
}

// UpdateCustomer handles PUT /customers/{customerID}
// @Summary Update a customer
// @Description Replaces the mutable fields of a customer record. Status and timestamps cannot be changed through this endpoint.
// @Tags Customers
// @Accept json
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Param request body dto.CreateCustomerRequest true "Customer update request"
// @Success 200 {object} dto.APIResponse{data=dto.CustomerResponse} "Customer successfully updated"
// @Failure 400 {object} dto.APIResponse "Invalid customer ID or request payload"
// @Failure 404 {object} dto.APIResponse "Customer not found"
// @Failure 409 {object} dto.APIResponse "New customer code already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /customers/{customerID} [put]
// @Security BearerAuth
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received update customer request", slog.Int64("customerID", customerID))

	var req dto.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, r, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	updated, err := h.service.UpdateCustomer(r.Context(), customerID, req.ToInput())
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, customer.ErrNotFound) && !errors.Is(err, customer.ErrDuplicateCode) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to update customer", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer updated successfully", slog.Int64("customerID", customerID))
	respondJSON(w, r, http.StatusOK, dto.NewCustomerResponse(updated), "Customer updated successfully")
}

// DeactivateCustomer handles PATCH /customers/{customerID}/deactivate
// @Summary Deactivate a customer
// @Description Marks a customer record as inactive. The record is retained; no data is deleted.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Param deactivatedBy query string false "Actor performing the deactivation" default(system)
// @Success 200 {object} dto.APIResponse "Customer successfully deactivated"
// @Failure 400 {object} dto.APIResponse "Invalid customer ID"
// @Failure 404 {object} dto.APIResponse "Customer not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /customers/{customerID}/deactivate [patch]
// @Security BearerAuth
func (h *CustomerHandler) DeactivateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	actor := r.URL.Query().Get("deactivatedBy")
	if actor == "" {
		actor = "system"
	}

	h.logger.DebugContext(r.Context(), "Received deactivate customer request",
		slog.Int64("customerID", customerID), slog.String("actor", actor))

	if err := h.service.DeactivateCustomer(r.Context(), customerID, actor); err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, customer.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to deactivate customer", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer deactivated successfully", slog.Int64("customerID", customerID))
	respondJSON(w, r, http.StatusOK, nil, "Customer deactivated successfully")
}

// ActivateCustomer handles PATCH /customers/{customerID}/activate
// @Summary Activate a customer
// @Description Marks an inactive customer record as active again.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Param activatedBy query string false "Actor performing the activation" default(system)
// @Success 200 {object} dto.APIResponse "Customer successfully activated"
// @Failure 400 {object} dto.APIResponse "Invalid customer ID"
// @Failure 404 {object} dto.APIResponse "Customer not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /customers/{customerID}/activate [patch]
// @Security BearerAuth
func (h *CustomerHandler) ActivateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	actor := r.URL.Query().Get("activatedBy")
	if actor == "" {
		actor = "system"
	}

	h.logger.DebugContext(r.Context(), "Received activate customer request",
		slog.Int64("customerID", customerID), slog.String("actor", actor))

	if err := h.service.ActivateCustomer(r.Context(), customerID, actor); err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, customer.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to activate customer", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer activated successfully", slog.Int64("customerID", customerID))
	respondJSON(w, r, http.StatusOK, nil, "Customer activated successfully")
}

// GetCustomerStats handles GET /customers/stats
// @Summary Customer statistics
// @Description Returns live aggregate statistics: totals, active/inactive split and the industries of active customers.
// @Tags Customers
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StatsResponse} "Customer statistics"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /customers/stats [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomerStats(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received customer stats request")

	stats, err := h.service.GetCustomerStats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to compute customer stats", slog.Any("error", err))
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, dto.NewStatsResponse(stats), "Statistics retrieved successfully")
}
