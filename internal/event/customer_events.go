package event

import (
	"context"
	"time"
)

const (
	ActionUpdated     = "UPDATED"
	ActionActivated   = "ACTIVATED"
	ActionDeactivated = "DEACTIVATED"
)

type CustomerEventPayload struct {
	CustomerID         int64     `json:"customerId"`
	CustomerCode       string    `json:"customerCode"`
	CompanyName        string    `json:"companyName"`
	ContactPerson      *string   `json:"contactPerson,omitempty"`
	Phone              *string   `json:"phone,omitempty"`
	Email              *string   `json:"email,omitempty"`
	Address            *string   `json:"address,omitempty"`
	Industry           *string   `json:"industry,omitempty"`
	RegistrationNumber *string   `json:"registrationNumber,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type CustomerCreatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

// CustomerUpdatedEvent covers field updates and lifecycle transitions.
// Actor identifies who requested the change when the API caller supplied it.
type CustomerUpdatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Action    string               `json:"action"`
	Actor     string               `json:"actor,omitempty"`
	Payload   CustomerEventPayload `json:"payload"`
}

type EventPublisher interface {
	PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error
	PublishCustomerUpdated(ctx context.Context, event CustomerUpdatedEvent) error
}
