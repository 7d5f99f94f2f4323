// Package dto defines the request and response shapes of the customer API.
// Requests validate themselves before they reach the service layer; responses
// are always wrapped in the APIResponse envelope.
package dto

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"credit-control/internal/domain/customer"
	"credit-control/internal/pkg/apperrors"
)

var (
	customerCodeRegex = regexp.MustCompile(`^[A-Z0-9]{4,20}$`)
	phoneRegex        = regexp.MustCompile(`^[+]?[0-9\-\s()]{0,50}$`)
	emailRegex        = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// CreateCustomerRequest is the body of both create and full-update calls.
type CreateCustomerRequest struct {
	CustomerCode       string  `json:"customerCode" example:"ACME01"`
	CompanyName        string  `json:"companyName" example:"Acme Industries"`
	ContactPerson      *string `json:"contactPerson,omitempty" example:"Jane Smith"`
	Phone              *string `json:"phone,omitempty" example:"+62 21 555-0101"`
	Email              *string `json:"email,omitempty" example:"ops@acme.example"`
	Address            *string `json:"address,omitempty"`
	Industry           *string `json:"industry,omitempty" example:"Manufacturing"`
	RegistrationNumber *string `json:"registrationNumber,omitempty"`
}

// Validate checks every field against the persistence constraints. The code
// is uppercased before the format check, matching how the service stores it.
func (r *CreateCustomerRequest) Validate() error {
	code := strings.ToUpper(strings.TrimSpace(r.CustomerCode))
	if !customerCodeRegex.MatchString(code) {
		return apperrors.NewValidationError("customerCode",
			"must be 4-20 characters, letters and digits only")
	}

	// Length limits count characters, not bytes, so multibyte names measure
	// the same as they would in the database's length semantics.
	name := strings.TrimSpace(r.CompanyName)
	if n := utf8.RuneCountInString(name); n < 2 || n > 255 {
		return apperrors.NewValidationError("companyName",
			"must be between 2 and 255 characters")
	}

	if r.ContactPerson != nil && utf8.RuneCountInString(*r.ContactPerson) > 100 {
		return apperrors.NewValidationError("contactPerson", "must not exceed 100 characters")
	}
	if r.Phone != nil && !phoneRegex.MatchString(*r.Phone) {
		return apperrors.NewValidationError("phone",
			"may only contain digits, spaces, parentheses, dashes and a leading +, up to 50 characters")
	}
	if r.Email != nil {
		if utf8.RuneCountInString(*r.Email) > 100 {
			return apperrors.NewValidationError("email", "must not exceed 100 characters")
		}
		if !emailRegex.MatchString(*r.Email) {
			return apperrors.NewValidationError("email", "must be a valid email address")
		}
	}
	if r.Address != nil && utf8.RuneCountInString(*r.Address) > 1000 {
		return apperrors.NewValidationError("address", "must not exceed 1000 characters")
	}
	if r.Industry != nil && utf8.RuneCountInString(*r.Industry) > 100 {
		return apperrors.NewValidationError("industry", "must not exceed 100 characters")
	}
	if r.RegistrationNumber != nil && utf8.RuneCountInString(*r.RegistrationNumber) > 50 {
		return apperrors.NewValidationError("registrationNumber", "must not exceed 50 characters")
	}
	return nil
}

// ToInput converts the request into the service-layer input. Normalization
// of code and name is the service's job; fields pass through as given.
func (r *CreateCustomerRequest) ToInput() customer.CreateCustomerInput {
	return customer.CreateCustomerInput{
		CustomerCode:       r.CustomerCode,
		CompanyName:        r.CompanyName,
		ContactPerson:      r.ContactPerson,
		Phone:              r.Phone,
		Email:              r.Email,
		Address:            r.Address,
		Industry:           r.Industry,
		RegistrationNumber: r.RegistrationNumber,
	}
}

type CustomerResponse struct {
	CustomerID         int64     `json:"customerId" example:"1"`
	CustomerCode       string    `json:"customerCode" example:"ACME01"`
	CompanyName        string    `json:"companyName" example:"Acme Industries"`
	ContactPerson      *string   `json:"contactPerson,omitempty"`
	Phone              *string   `json:"phone,omitempty"`
	Email              *string   `json:"email,omitempty"`
	Address            *string   `json:"address,omitempty"`
	Industry           *string   `json:"industry,omitempty"`
	RegistrationNumber *string   `json:"registrationNumber,omitempty"`
	Status             string    `json:"status" example:"ACTIVE"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	return CustomerResponse{
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

func NewCustomerResponseList(customers []*customer.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for _, cust := range customers {
		out = append(out, NewCustomerResponse(cust))
	}
	return out
}

// APIResponse is the uniform envelope of every endpoint, success or failure.
type APIResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId,omitempty"`
}

// PageResponse mirrors the pagination envelope of list and search endpoints.
type PageResponse struct {
	Content       []CustomerResponse `json:"content"`
	TotalElements int64              `json:"totalElements" example:"42"`
	TotalPages    int                `json:"totalPages" example:"5"`
	CurrentPage   int                `json:"currentPage" example:"0"`
	PageSize      int                `json:"pageSize" example:"10"`
	First         bool               `json:"first"`
	Last          bool               `json:"last"`
	Empty         bool               `json:"empty"`
}

func NewPageResponse(page *customer.Page) PageResponse {
	totalPages := 0
	if page.Size > 0 {
		totalPages = int((page.TotalElements + int64(page.Size) - 1) / int64(page.Size))
	}
	return PageResponse{
		Content:       NewCustomerResponseList(page.Content),
		TotalElements: page.TotalElements,
		TotalPages:    totalPages,
		CurrentPage:   page.Page,
		PageSize:      page.Size,
		First:         page.Page == 0,
		Last:          totalPages == 0 || page.Page == totalPages-1,
		Empty:         len(page.Content) == 0,
	}
}

type StatsResponse struct {
	TotalCustomers    int64    `json:"totalCustomers" example:"42"`
	ActiveCustomers   int64    `json:"activeCustomers" example:"40"`
	InactiveCustomers int64    `json:"inactiveCustomers" example:"2"`
	TotalIndustries   int      `json:"totalIndustries" example:"7"`
	Industries        []string `json:"industries"`
}

func NewStatsResponse(stats *customer.Stats) StatsResponse {
	return StatsResponse{
		TotalCustomers:    stats.TotalCustomers,
		ActiveCustomers:   stats.ActiveCustomers,
		InactiveCustomers: stats.InactiveCustomers,
		TotalIndustries:   stats.TotalIndustries,
		Industries:        stats.Industries,
	}
}
