package entity

import (
	"strings"
	"time"
)

// SubmissionType distingue una intención de compra (LOI) de una de venta (SCO).
type SubmissionType string

const (
	SubmissionBuyer  SubmissionType = "buyer"
	SubmissionSeller SubmissionType = "seller"
)

// Valid indica si el tipo es buyer o seller.
func (t SubmissionType) Valid() bool {
	return t == SubmissionBuyer || t == SubmissionSeller
}

// DocumentLabel devuelve la sigla del documento comercial asociado.
func (t SubmissionType) DocumentLabel() string {
	if t == SubmissionSeller {
		return "SCO"
	}
	return "LOI"
}

// SubmissionStatus es una etiqueta plana; solo un admin la cambia.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "Pending"
	StatusVerified SubmissionStatus = "Verified"
	StatusInReview SubmissionStatus = "In Review"
)

// TimestampLayout formato fijo (ordenable lexicográficamente) de los timestamps persistidos.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp serializa t en UTC con TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// TradeSubmission registro de una intención de compra o venta.
type TradeSubmission struct {
	ID            string           `json:"id"`
	Type          SubmissionType   `json:"type"`
	Commodity     string           `json:"commodity"`
	Quantity      string           `json:"quantity"`
	Price         string           `json:"price"`
	Timestamp     string           `json:"timestamp"`
	Status        SubmissionStatus `json:"status"`
	SubmittedBy   string           `json:"submittedBy,omitempty"`
	ClientName    string           `json:"clientName"`
	ContactEmail  string           `json:"contactEmail,omitempty"`
	ContactPhone  string           `json:"contactPhone,omitempty"`
	ContactRegion string           `json:"contactRegion,omitempty"`
	SocialType    string           `json:"socialType,omitempty"`
	SocialAccount string           `json:"socialAccount,omitempty"`
	PaymentTerms  string           `json:"paymentTerms,omitempty"`
	Incoterms     string           `json:"incoterms,omitempty"`
	FileName      string           `json:"fileName,omitempty"`
	FileURL       string           `json:"fileUrl,omitempty"`
	FilePath      string           `json:"filePath,omitempty"`
}

// SanitizePhone elimina todo carácter que no sea un dígito ASCII.
func SanitizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsDigits indica si s es no vacío y solo contiene dígitos ASCII.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
