package domain

import "time"

// EventKind names a domain event raised after a successful transition.
type EventKind string

const (
	EventInvoiceUploaded      EventKind = "InvoiceUploaded"
	EventInvoiceValidated     EventKind = "InvoiceValidated"
	EventInvoiceApproved      EventKind = "InvoiceApproved"
	EventInvoiceFunded        EventKind = "InvoiceFunded"
	EventInvoicePaid          EventKind = "InvoicePaid"
	EventInvoiceRejected      EventKind = "InvoiceRejected"
	EventEarlyPaymentOffered  EventKind = "EarlyPaymentOffered"
	EventEarlyPaymentAccepted EventKind = "EarlyPaymentAccepted"
	EventEarlyPaymentRejected EventKind = "EarlyPaymentRejected"
	EventInvoiceMatured       EventKind = "InvoiceMatured"
)

// DomainEvent tells one organization that something happened to an invoice.
// Delivery is the notification collaborator's concern.
type DomainEvent struct {
	EventID     string            `json:"eventID"`
	Kind        EventKind         `json:"kind"`
	InvoiceID   string            `json:"invoiceID"`
	TargetOrgID string            `json:"targetOrgID"`
	Payload     map[string]string `json:"payload,omitempty"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

// TransitionResult is what every lifecycle operation returns on success.
type TransitionResult struct {
	Invoice   Invoice       `json:"invoice"`
	NewStatus InvoiceStatus `json:"newStatus"`
	Events    []DomainEvent `json:"events"`
}
