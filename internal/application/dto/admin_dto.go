package dto

import "github.com/jdmorgan/trading-portal/internal/domain/entity"

// BrandRequest edición parcial de la marca.
type BrandRequest struct {
	LogoText *string `json:"logoText"`
	LogoIcon *string `json:"logoIcon"`
}

// SlideRequest alta o edición parcial de un slide.
type SlideRequest struct {
	Img      *string `json:"img"`
	Title    *string `json:"title"`
	Subtitle *string `json:"subtitle"`
	Order    *int    `json:"order"`
}

// AnnouncementsRequest reemplazo de la lista de avisos.
type AnnouncementsRequest struct {
	Items []entity.Announcement `json:"items"`
}

// QuotesRequest reemplazo de la lista de cotizaciones.
type QuotesRequest struct {
	Items []entity.MarketQuote `json:"items"`
}

// IndustryNewsRequest reemplazo de la lista de noticias.
type IndustryNewsRequest struct {
	Items []entity.IndustryNews `json:"items"`
}

// UploadResponse URL de un archivo subido.
type UploadResponse struct {
	URL string `json:"url"`
}

// PublishResponse estado del draft visual tras publicar.
type PublishResponse struct {
	State string `json:"state"`
}

// MemberListResponse listado de perfiles.
type MemberListResponse struct {
	Items []UserResponse `json:"items"`
}

// HousekeepingResponse resultado de un trabajo de limpieza con su bitácora.
type HousekeepingResponse struct {
	Job     string   `json:"job"`
	Scanned int      `json:"scanned"`
	Matched int      `json:"matched"`
	Deleted int      `json:"deleted"`
	Log     []string `json:"log"`
}

// DiagnosticResponse resultado del chequeo de conectividad.
type DiagnosticResponse struct {
	Diagnostic  entity.Diagnostic `json:"diagnostic"`
	ReadLatency int64             `json:"readLatencyMs"`
	Status      string            `json:"status"`
}

// TransitionRequest consulta al enrutador de vistas.
type TransitionRequest struct {
	Current string `json:"current" validate:"required"`
	Event   string `json:"event" validate:"required"`
}

// TransitionResponse vista siguiente.
type TransitionResponse struct {
	Next string `json:"next"`
}

// LegalStatusResponse estado de aceptación del aviso legal.
type LegalStatusResponse struct {
	Accepted bool `json:"accepted"`
}
