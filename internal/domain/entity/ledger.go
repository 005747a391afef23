package entity

import "github.com/shopspring/decimal"

// SubmissionTotals agregado de intenciones por tipo. Las que tienen un precio
// no numérico se cuentan en Count pero no en PriceTotal.
type SubmissionTotals struct {
	Type       SubmissionType  `json:"type"`
	Count      int             `json:"count"`
	Priced     int             `json:"priced"`
	PriceTotal decimal.Decimal `json:"priceTotal"`
}
