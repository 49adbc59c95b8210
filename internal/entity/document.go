package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is the host application's record an extraction result is applied
// to. Only the fields this subsystem writes are modeled here.
type Document struct {
	ID            uuid.UUID  `json:"id"`
	Path          string     `json:"path"`
	SchemaID      *uuid.UUID `json:"schema_id,omitempty"`
	Organization  string     `json:"organization,omitempty"`
	InvoiceNumber string     `json:"invoice_number,omitempty"`
	InvoiceDate   *time.Time `json:"invoice_date,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Subtotal      *float64   `json:"subtotal,omitempty"`
	Tax           *float64   `json:"tax,omitempty"`
	Amount        *float64   `json:"amount,omitempty"`
	CurrencyCode  string     `json:"currency_code,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
