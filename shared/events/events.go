package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abpira/accounts/shared/models"
)

// Event types
const (
	AccountCreated = "account.created"
	AccountUpdated = "account.updated"
	AccountDeleted = "account.deleted"
)

// AccountEventsStream is the Redis stream every account lifecycle event is appended to.
const AccountEventsStream = "account.events"

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// DecodeData re-decodes the loosely typed Data payload into v.
func (e Event) DecodeData(v any) error {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", e.Type, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %w", e.Type, err)
	}
	return nil
}

// AccountCreatedEvent carries the full view so consumers can project it
// without reading the write store.
type AccountCreatedEvent struct {
	CustomerID int64               `json:"customerId"`
	Customer   models.CustomerView `json:"customer"`
}

// AccountUpdatedEvent also names the mobile number the customer had before
// the update, since the view was keyed by it.
type AccountUpdatedEvent struct {
	CustomerID           int64               `json:"customerId"`
	PreviousMobileNumber string              `json:"previousMobileNumber"`
	Customer             models.CustomerView `json:"customer"`
}

type AccountDeletedEvent struct {
	CustomerID   int64  `json:"customerId"`
	MobileNumber string `json:"mobileNumber"`
}
