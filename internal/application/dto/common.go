package dto

// LimitRequest límite para listados.
type LimitRequest struct {
	Limit int `query:"limit" validate:"min=1,max=100"`
}

// DefaultLimit aplica el valor por defecto si Limit es cero o excede el máximo.
func (p *LimitRequest) DefaultLimit(def int) {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = def
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// MessageResponse respuesta con mensaje de confirmación (toast).
type MessageResponse struct {
	Message string `json:"message"`
}
