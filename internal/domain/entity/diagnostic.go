package entity

// Diagnostic documento de prueba escrito por el chequeo de conectividad.
type Diagnostic struct {
	ID        string `json:"id"`
	TestTime  string `json:"testTime"`
	Platform  string `json:"platform"`
	Status    string `json:"status"`
	RunBy     string `json:"runBy,omitempty"`
	LatencyMS int64  `json:"latencyMs"`
}

// DiagnosticPlatform identifica la plataforma en los documentos de diagnóstico.
const DiagnosticPlatform = "JD Morgan Terminal V2"
