package bill

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Status is the review state of a submitted bill
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

var (
	// ErrInvalidDate is returned when a bill date is not an ISO-8601 calendar date
	ErrInvalidDate = errors.New("invalid bill date")

	// ErrNoStore is returned when an operation needs a bill store and none was supplied
	ErrNoStore = errors.New("no bill store configured")
)

// Bill represents an expense report with its receipt
type Bill struct {
	ID           string          `json:"id,omitempty"`
	Email        string          `json:"email"`
	Type         string          `json:"type"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"date"` // ISO 8601 (YYYY-MM-DD)
	VAT          string          `json:"vat"`
	Pct          string          `json:"pct"`
	Commentary   string          `json:"commentary"`
	FileURL      string          `json:"fileUrl,omitempty"`
	FileName     string          `json:"fileName,omitempty"`
	Status       Status          `json:"status"`
	CommentAdmin string          `json:"commentAdmin,omitempty"`
}

// HasReceipt reports whether the receipt file URL and name are both set
func (b Bill) HasReceipt() bool {
	return b.FileURL != "" && b.FileName != ""
}

// Row is the display projection of a listed bill. Bill keeps the stored values;
// Date and Status hold the labels shown to the employee.
type Row struct {
	Bill   Bill
	Date   string
	Status string
}
