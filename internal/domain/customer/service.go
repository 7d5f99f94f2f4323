package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"credit-control/internal/event"
	"credit-control/internal/infrastructure/monitoring"
	"credit-control/internal/pkg/apperrors"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	customerNotFound = "Customer not found by repository"
)

// CreateCustomerInput carries the mutable fields of a customer record for
// both create and full-update operations. Code and company name are
// normalized by the service; format validation happens at the API boundary.
type CreateCustomerInput struct {
	CustomerCode       string
	CompanyName        string
	ContactPerson      *string
	Phone              *string
	Email              *string
	Address            *string
	Industry           *string
	RegistrationNumber *string
}

type Page struct {
	Content       []*Customer
	TotalElements int64
	Page          int
	Size          int
}

type Stats struct {
	TotalCustomers    int64    `json:"totalCustomers"`
	ActiveCustomers   int64    `json:"activeCustomers"`
	InactiveCustomers int64    `json:"inactiveCustomers"`
	TotalIndustries   int      `json:"totalIndustries"`
	Industries        []string `json:"industries"`
}

type CustomerService interface {
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	GetCustomerByCode(ctx context.Context, customerCode string) (*Customer, error)
	SearchCustomers(ctx context.Context, query string, page, size int, includeInactive bool) (*Page, error)
	CreateCustomer(ctx context.Context, input CreateCustomerInput) (*Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, input CreateCustomerInput) (*Customer, error)
	DeactivateCustomer(ctx context.Context, customerID int64, deactivatedBy string) error
	ActivateCustomer(ctx context.Context, customerID int64, activatedBy string) error
	GetCustomerStats(ctx context.Context) (*Stats, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	cache  CustomerCache
	pub    event.EventPublisher
	logger *slog.Logger

	// createMu serializes id assignment: MaxAssignedID and the following
	// insert must not interleave between two creates.
	createMu sync.Mutex

	// recordLocks serializes mutations targeting the same customer id.
	recordMu    sync.Mutex
	recordLocks map[int64]*sync.Mutex
}

// NewCustomerService wires the cache-aside read path and the serialized
// write path. Cache and publisher are optional; a nil value disables the
// corresponding behavior.
func NewCustomerService(repo CustomerRepository, cache CustomerCache, pub event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	return &customerService{
		repo:        repo,
		cache:       cache,
		pub:         pub,
		logger:      logger.With(slog.String("component", "customerService")),
		recordLocks: make(map[int64]*sync.Mutex),
	}
}

func (s *customerService) recordLock(customerID int64) *sync.Mutex {
	s.recordMu.Lock()
	defer s.recordMu.Unlock()
	mu, ok := s.recordLocks[customerID]
	if !ok {
		mu = &sync.Mutex{}
		s.recordLocks[customerID] = mu
	}
	return mu
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))

	if s.cache != nil {
		if cust, ok := s.cache.Get(IDKey(customerID)); ok {
			logCtx.DebugContext(ctx, "Customer served from cache")
			return cust, nil
		}
	}

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	if s.cache != nil {
		s.cache.Put(IDKey(customerID), cust)
	}
	logCtx.DebugContext(ctx, "Successfully retrieved customer")
	return cust, nil
}

func (s *customerService) GetCustomerByCode(ctx context.Context, customerCode string) (*Customer, error) {
	code := normalizeCode(customerCode)
	logCtx := s.logger.With(slog.String("customerCode", code))

	if code == "" {
		return nil, fmt.Errorf("%w: customer code cannot be empty", apperrors.ErrInvalidArgument)
	}

	if s.cache != nil {
		if cust, ok := s.cache.Get(CodeKey(code)); ok {
			logCtx.DebugContext(ctx, "Customer served from cache")
			return cust, nil
		}
	}

	cust, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer by code", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer by code %s: %w", code, err)
	}

	if s.cache != nil {
		s.cache.Put(CodeKey(code), cust)
	}
	logCtx.DebugContext(ctx, "Successfully retrieved customer by code")
	return cust, nil
}

// SearchCustomers is never cached: the result set changes with the data.
func (s *customerService) SearchCustomers(ctx context.Context, query string, page, size int, includeInactive bool) (*Page, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}

	q := SearchQuery{
		Text:            strings.TrimSpace(query),
		IncludeInactive: includeInactive,
		Page:            page,
		Size:            size,
	}

	customers, total, err := s.repo.Search(ctx, q)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error searching customers",
			slog.String("query", q.Text), slog.Any("error", err))
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}

	s.logger.DebugContext(ctx, "Search finished",
		slog.String("query", q.Text), slog.Int("page", page), slog.Int64("total", total))

	return &Page{
		Content:       customers,
		TotalElements: total,
		Page:          page,
		Size:          size,
	}, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*Customer, error) {
	code := normalizeCode(input.CustomerCode)
	companyName := strings.TrimSpace(input.CompanyName)
	logCtx := s.logger.With(slog.String("customerCode", code))

	if code == "" {
		return nil, fmt.Errorf("%w: customer code cannot be empty", apperrors.ErrInvalidArgument)
	}
	if companyName == "" {
		return nil, fmt.Errorf("%w: company name cannot be empty", apperrors.ErrInvalidArgument)
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	exists, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		logCtx.ErrorContext(ctx, "Repository error checking code uniqueness", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check customer code %s: %w", code, err)
	}
	if exists {
		logCtx.WarnContext(ctx, "Duplicate customer code on create")
		return nil, ErrDuplicateCode
	}

	maxID, err := s.repo.MaxAssignedID(ctx)
	if err != nil {
		logCtx.ErrorContext(ctx, "Repository error computing next customer ID", slog.Any("error", err))
		return nil, fmt.Errorf("failed to assign customer ID: %w", err)
	}

	now := time.Now().UTC()
	cust := &Customer{
		CustomerID:         maxID + 1,
		CustomerCode:       code,
		CompanyName:        companyName,
		ContactPerson:      input.ContactPerson,
		Phone:              input.Phone,
		Email:              input.Email,
		Address:            input.Address,
		Industry:           input.Industry,
		RegistrationNumber: input.RegistrationNumber,
		Status:             StatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Save(ctx, cust); err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			logCtx.WarnContext(ctx, "Unique constraint rejected customer code on insert")
			return nil, ErrDuplicateCode
		}
		logCtx.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	// A new record may appear in any listing, so the whole cache goes.
	if s.cache != nil {
		s.cache.InvalidateAll()
	}
	monitoring.Business.CustomersCreatedTotal.Inc()

	logCtx.InfoContext(ctx, "Customer created",
		slog.Int64("customerID", cust.CustomerID), slog.String("companyName", cust.CompanyName))
	s.publishCreated(ctx, cust)
	return cust, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, customerID int64, input CreateCustomerInput) (*Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))

	newCode := normalizeCode(input.CustomerCode)
	companyName := strings.TrimSpace(input.CompanyName)
	if newCode == "" {
		return nil, fmt.Errorf("%w: customer code cannot be empty", apperrors.ErrInvalidArgument)
	}
	if companyName == "" {
		return nil, fmt.Errorf("%w: company name cannot be empty", apperrors.ErrInvalidArgument)
	}

	mu := s.recordLock(customerID)
	mu.Lock()
	defer mu.Unlock()

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer for update", slog.Any("error", err))
		return nil, fmt.Errorf("cannot find customer %d to update: %w", customerID, err)
	}

	oldCode := cust.CustomerCode
	if newCode != oldCode {
		exists, err := s.repo.ExistsByCode(ctx, newCode)
		if err != nil {
			logCtx.ErrorContext(ctx, "Repository error checking code uniqueness", slog.Any("error", err))
			return nil, fmt.Errorf("failed to check customer code %s: %w", newCode, err)
		}
		if exists {
			logCtx.WarnContext(ctx, "Duplicate customer code on update", slog.String("newCode", newCode))
			return nil, ErrDuplicateCode
		}
		cust.CustomerCode = newCode
	}

	cust.CompanyName = companyName
	cust.ContactPerson = input.ContactPerson
	cust.Phone = input.Phone
	cust.Email = input.Email
	cust.Address = input.Address
	cust.Industry = input.Industry
	cust.RegistrationNumber = input.RegistrationNumber
	cust.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, cust); err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			return nil, ErrDuplicateCode
		}
		logCtx.ErrorContext(ctx, "Repository failed to save updated customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save customer %d: %w", customerID, err)
	}

	s.invalidateRecord(customerID, oldCode, cust.CustomerCode)

	logCtx.InfoContext(ctx, "Customer updated", slog.String("customerCode", cust.CustomerCode))
	s.publishUpdated(ctx, cust, event.ActionUpdated, "")
	return cust, nil
}

func (s *customerService) DeactivateCustomer(ctx context.Context, customerID int64, deactivatedBy string) error {
	return s.setStatus(ctx, customerID, StatusInactive, event.ActionDeactivated, deactivatedBy)
}

func (s *customerService) ActivateCustomer(ctx context.Context, customerID int64, activatedBy string) error {
	return s.setStatus(ctx, customerID, StatusActive, event.ActionActivated, activatedBy)
}

func (s *customerService) setStatus(ctx context.Context, customerID int64, status Status, action, actor string) error {
	logCtx := s.logger.With(slog.Int64("customerID", customerID), slog.String("status", string(status)))

	mu := s.recordLock(customerID)
	mu.Lock()
	defer mu.Unlock()

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer for status change", slog.Any("error", err))
		return fmt.Errorf("cannot find customer %d to change status: %w", customerID, err)
	}

	if status == StatusActive {
		cust.Activate()
	} else {
		cust.Deactivate()
	}

	if err := s.repo.Save(ctx, cust); err != nil {
		logCtx.ErrorContext(ctx, "Repository failed to save status change", slog.Any("error", err))
		return fmt.Errorf("failed to save status change for customer %d: %w", customerID, err)
	}

	s.invalidateRecord(customerID, cust.CustomerCode, cust.CustomerCode)

	logCtx.InfoContext(ctx, "Customer status changed", slog.String("actor", actor))
	s.publishUpdated(ctx, cust, action, actor)
	return nil
}

// GetCustomerStats is always computed live from store aggregates.
func (s *customerService) GetCustomerStats(ctx context.Context) (*Stats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error counting customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	active, err := s.repo.CountActive(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error counting active customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to count active customers: %w", err)
	}

	industries, err := s.repo.DistinctIndustries(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing industries", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list industries: %w", err)
	}

	stats := &Stats{
		TotalCustomers:    total,
		ActiveCustomers:   active,
		InactiveCustomers: total - active,
		TotalIndustries:   len(industries),
		Industries:        industries,
	}

	s.logger.DebugContext(ctx, "Computed customer stats",
		slog.Int64("total", total), slog.Int64("active", active), slog.Int("industries", len(industries)))
	return stats, nil
}

// invalidateRecord drops both keyspaces of a mutated record. Both the old and
// the new code key are invalidated so a code change leaves no stale alias.
func (s *customerService) invalidateRecord(customerID int64, oldCode, newCode string) {
	if s.cache == nil {
		return
	}
	keys := []string{IDKey(customerID), CodeKey(oldCode)}
	if newCode != oldCode {
		keys = append(keys, CodeKey(newCode))
	}
	s.cache.Invalidate(keys...)
}

func newEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID:         cust.CustomerID,
		CustomerCode:       cust.CustomerCode,
		CompanyName:        cust.CompanyName,
		ContactPerson:      cust.ContactPerson,
		Phone:              cust.Phone,
		Email:              cust.Email,
		Address:            cust.Address,
		Industry:           cust.Industry,
		RegistrationNumber: cust.RegistrationNumber,
		Status:             string(cust.Status),
		CreatedAt:          cust.CreatedAt,
		UpdatedAt:          cust.UpdatedAt,
	}
}

// Event publishing is best effort: a bus failure never fails the request.
func (s *customerService) publishCreated(ctx context.Context, cust *Customer) {
	if s.pub == nil {
		return
	}
	evt := event.CustomerCreatedEvent{
		Timestamp: time.Now().UTC(),
		Payload:   newEventPayload(cust),
	}
	if err := s.pub.PublishCustomerCreated(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Customer created, but failed to publish creation event",
			slog.Int64("customerID", cust.CustomerID), slog.Any("error", err))
	}
}

func (s *customerService) publishUpdated(ctx context.Context, cust *Customer, action, actor string) {
	if s.pub == nil {
		return
	}
	evt := event.CustomerUpdatedEvent{
		Timestamp: time.Now().UTC(),
		Action:    action,
		Actor:     actor,
		Payload:   newEventPayload(cust),
	}
	if err := s.pub.PublishCustomerUpdated(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Customer mutated, but failed to publish update event",
			slog.Int64("customerID", cust.CustomerID), slog.Any("error", err))
	}
}
