package customer

import (
	"strconv"
	"time"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

type Customer struct {
	CustomerID         int64     `json:"customerId"`
	CustomerCode       string    `json:"customerCode"`
	CompanyName        string    `json:"companyName"`
	ContactPerson      *string   `json:"contactPerson,omitempty"`
	Phone              *string   `json:"phone,omitempty"`
	Email              *string   `json:"email,omitempty"`
	Address            *string   `json:"address,omitempty"`
	Industry           *string   `json:"industry,omitempty"`
	RegistrationNumber *string   `json:"registrationNumber,omitempty"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func NewCustomer(code, companyName string) *Customer {
	now := time.Now().UTC()
	return &Customer{
		CustomerCode: code,
		CompanyName:  companyName,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (c *Customer) IsActive() bool {
	return c.Status == StatusActive
}

// DisplayName prefers the company name and falls back to the customer code.
func (c *Customer) DisplayName() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}
	return c.CustomerCode
}

func (c *Customer) Activate() {
	c.Status = StatusActive
	c.UpdatedAt = time.Now().UTC()
}

func (c *Customer) Deactivate() {
	c.Status = StatusInactive
	c.UpdatedAt = time.Now().UTC()
}

// Clone returns an independent copy safe to hand to the cache.
func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	dup := *c
	return &dup
}

// IDKey and CodeKey are the two cache keyspaces for a customer record.
// Both must be invalidated whenever the record mutates.
func IDKey(customerID int64) string {
	return strconv.FormatInt(customerID, 10)
}

func CodeKey(code string) string {
	return "code:" + code
}
