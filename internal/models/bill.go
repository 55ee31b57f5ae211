package models

import (
	"errors"
	"time"
)

// PaymentStatus is derived from the paid/total amounts, never set directly.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPartial PaymentStatus = "Partial"
	PaymentPaid    PaymentStatus = "Paid"
)

// ErrInvalidAmount is returned when a payment recording is not positive.
var ErrInvalidAmount = errors.New("payment amount must be greater than zero")

// Service is a billed line item.
type Service struct {
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
}

// InsuranceClaim is an optional nested record on a bill. Its fields carry no
// cross-field invariant and are settable independently.
type InsuranceClaim struct {
	Claimed     bool    `json:"claimed"`
	ClaimAmount float64 `json:"claimAmount"`
	ClaimStatus string  `json:"claimStatus,omitempty"`
}

// Bill is the billing ledger entry for one patient, optionally tied to an
// appointment. TotalAmount derives from the service list unless explicitly
// overridden at creation; PaidAmount only ever grows.
type Bill struct {
	BaseModel
	PatientID      string         `gorm:"size:36;index" json:"patientId"`
	AppointmentID  *string        `gorm:"size:36;index" json:"appointmentId,omitempty"`
	Services       []Service      `gorm:"serializer:json" json:"services"`
	TotalAmount    float64        `json:"totalAmount"`
	PaidAmount     float64        `json:"paidAmount"`
	PaymentStatus  PaymentStatus  `gorm:"size:20;default:'Pending'" json:"paymentStatus"`
	PaymentMethod  string         `gorm:"size:50" json:"paymentMethod,omitempty"`
	DateIssued     time.Time      `gorm:"autoCreateTime" json:"dateIssued"`
	DueDate        *time.Time     `json:"dueDate,omitempty"`
	InsuranceClaim InsuranceClaim `gorm:"serializer:json" json:"insuranceClaim"`

	// Relations
	Patient     Patient      `gorm:"foreignKey:PatientID" json:"-"`
	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}

// SumServiceCosts totals the line items, treating a missing cost as zero.
func SumServiceCosts(services []Service) float64 {
	var total float64
	for _, s := range services {
		total += s.Cost
	}
	return total
}

// DerivePaymentStatus applies the Pending/Partial/Paid rule.
func DerivePaymentStatus(paid, total float64) PaymentStatus {
	switch {
	case paid >= total && paid > 0:
		return PaymentPaid
	case paid > 0:
		return PaymentPartial
	default:
		return PaymentPending
	}
}

// ReplaceServices swaps the service list wholesale and recomputes the total.
// The payment status is left alone; it only moves when a payment is recorded.
func (b *Bill) ReplaceServices(services []Service) {
	b.Services = services
	b.TotalAmount = SumServiceCosts(services)
}

// RecordPayment adds amount to the running paid total and re-derives the
// payment status. Overpayment is permitted and simply yields Paid.
func (b *Bill) RecordPayment(amount float64, method string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	b.PaidAmount += amount
	if method != "" {
		b.PaymentMethod = method
	}
	b.PaymentStatus = DerivePaymentStatus(b.PaidAmount, b.TotalAmount)
	return nil
}

// Invoice is a read-only projection of a bill for display or printing.
type Invoice struct {
	InvoiceNumber string        `json:"invoiceNumber"`
	DateIssued    time.Time     `json:"dateIssued"`
	DueDate       *time.Time    `json:"dueDate,omitempty"`
	Patient       *Patient      `json:"patient,omitempty"`
	Services      []Service     `json:"services"`
	Subtotal      float64       `json:"subtotal"`
	PaidAmount    float64       `json:"paidAmount"`
	BalanceDue    float64       `json:"balanceDue"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

// ToInvoice builds the invoice projection. BalanceDue may be negative when
// the bill was overpaid.
func (b *Bill) ToInvoice(patient *Patient) Invoice {
	return Invoice{
		InvoiceNumber: b.ID,
		DateIssued:    b.DateIssued,
		DueDate:       b.DueDate,
		Patient:       patient,
		Services:      b.Services,
		Subtotal:      b.TotalAmount,
		PaidAmount:    b.PaidAmount,
		BalanceDue:    b.TotalAmount - b.PaidAmount,
		PaymentStatus: b.PaymentStatus,
	}
}
