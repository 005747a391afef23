package dto

import "github.com/jdmorgan/trading-portal/internal/domain/entity"

// SubmissionForm campos multipart del formulario de intención.
type SubmissionForm struct {
	Commodity     string `form:"commodity"`
	Quantity      string `form:"quantity"`
	Price         string `form:"price"`
	ClientName    string `form:"clientName"`
	ContactEmail  string `form:"contactEmail"`
	ContactPhone  string `form:"contactPhone"`
	ContactRegion string `form:"contactRegion"`
	SocialType    string `form:"socialType"`
	SocialAccount string `form:"socialAccount"`
	PaymentTerms  string `form:"paymentTerms"`
	Incoterms     string `form:"incoterms"`
}

// SubmissionAcceptedResponse intención registrada. SessionToken solo se emite
// cuando el envío creó una sesión anónima.
type SubmissionAcceptedResponse struct {
	Submission   *entity.TradeSubmission `json:"submission"`
	NextView     string                  `json:"next_view"`
	SessionToken string                  `json:"session_token,omitempty"`
}

// SubmissionListResponse listado de intenciones.
type SubmissionListResponse struct {
	Items []*entity.TradeSubmission `json:"items"`
	Limit int                       `json:"limit"`
}

// UpdateStatusRequest cambio de estado de una intención (solo admin).
type UpdateStatusRequest struct {
	Status entity.SubmissionStatus `json:"status" validate:"required"`
}

// LedgerSummaryResponse agregados por tipo.
type LedgerSummaryResponse struct {
	Totals []entity.SubmissionTotals `json:"totals"`
}
