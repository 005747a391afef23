package ports

// Metrics define el puerto de salida para las métricas operativas.
// La aplicación solo conoce este contrato; el adaptador Prometheus vive en infraestructura.
type Metrics interface {
	SubmissionAccepted(submissionType string)
	UploadedBytes(n int64)
	PublishFinished(ok bool)
	HousekeepingDeleted(job string, n int)
	WorkspacesOpen(n int)
}

// NopMetrics implementación vacía para tests y herramientas de línea de comandos.
type NopMetrics struct{}

func (NopMetrics) SubmissionAccepted(string)       {}
func (NopMetrics) UploadedBytes(int64)             {}
func (NopMetrics) PublishFinished(bool)            {}
func (NopMetrics) HousekeepingDeleted(string, int) {}
func (NopMetrics) WorkspacesOpen(int)              {}
