// Package intake registra intenciones de compra (LOI) y venta (SCO) con su
// documento adjunto opcional.
package intake

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jdmorgan/trading-portal/internal/application/ports"
	"github.com/jdmorgan/trading-portal/internal/application/session"
	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

// DefaultMaxFileBytes tope de tamaño del adjunto (100 MB).
const DefaultMaxFileBytes int64 = 100 * 1024 * 1024

// CatalogProvider fuente del catálogo de mercancías y términos.
type CatalogProvider interface {
	TradeConfig() entity.TradeConfig
}

// Form campos del formulario de intención.
type Form struct {
	Type          entity.SubmissionType
	Commodity     string
	Quantity      string
	Price         string
	ClientName    string
	ContactEmail  string
	ContactPhone  string
	ContactRegion string
	SocialType    string
	SocialAccount string
	PaymentTerms  string
	Incoterms     string
}

// Attachment documento adjunto. Size debe ser el tamaño real del contenido.
type Attachment struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// ProgressFunc recibe el porcentaje de subida (1..100).
type ProgressFunc func(percent int)

// Outcome resultado de un envío aceptado.
type Outcome struct {
	Submission *entity.TradeSubmission
	Session    session.Result
}

// Options parámetros del pipeline.
type Options struct {
	MaxFileBytes int64
	Now          func() time.Time
	NewID        func() string
}

// Pipeline valida, sube el adjunto y registra la intención.
type Pipeline struct {
	submissions repository.SubmissionRepository
	blobs       repository.BlobStore
	boot        *session.Bootstrapper
	catalog     CatalogProvider
	metrics     ports.Metrics
	log         zerolog.Logger
	maxBytes    int64
	now         func() time.Time
	newID       func() string
}

// NewPipeline construye el pipeline. metrics puede ser nil.
func NewPipeline(
	submissions repository.SubmissionRepository,
	blobs repository.BlobStore,
	boot *session.Bootstrapper,
	catalog CatalogProvider,
	metrics ports.Metrics,
	log zerolog.Logger,
	opts Options,
) *Pipeline {
	p := &Pipeline{
		submissions: submissions,
		blobs:       blobs,
		boot:        boot,
		catalog:     catalog,
		metrics:     metrics,
		log:         log,
		maxBytes:    opts.MaxFileBytes,
		now:         opts.Now,
		newID:       opts.NewID,
	}
	if p.maxBytes <= 0 {
		p.maxBytes = DefaultMaxFileBytes
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	if p.metrics == nil {
		p.metrics = ports.NopMetrics{}
	}
	return p
}

// MaxFileBytes tope vigente de tamaño del adjunto.
func (p *Pipeline) MaxFileBytes() int64 { return p.maxBytes }

// Submit ejecuta validación, subida opcional y escritura como documento nuevo.
// Ante un error de validación no se realiza ninguna llamada externa; si la
// subida falla no se escribe ningún registro.
func (p *Pipeline) Submit(ctx context.Context, form Form, att *Attachment, onProgress ProgressFunc) (*Outcome, error) {
	phone, err := p.validate(form)
	if err != nil {
		return nil, err
	}
	if att != nil && att.Size > p.maxBytes {
		return nil, domain.ValidationErr("file", domain.ErrFileTooLarge)
	}

	out := &Outcome{}
	rec := &entity.TradeSubmission{
		Type:          form.Type,
		Commodity:     form.Commodity,
		Quantity:      strings.TrimSpace(form.Quantity),
		Price:         strings.TrimSpace(form.Price),
		Status:        entity.StatusPending,
		ClientName:    strings.TrimSpace(form.ClientName),
		ContactEmail:  strings.TrimSpace(form.ContactEmail),
		ContactPhone:  phone,
		ContactRegion: strings.TrimSpace(form.ContactRegion),
		SocialType:    strings.TrimSpace(form.SocialType),
		SocialAccount: strings.TrimSpace(form.SocialAccount),
		PaymentTerms:  form.PaymentTerms,
		Incoterms:     form.Incoterms,
	}
	if id, ok := session.FromContext(ctx); ok {
		rec.SubmittedBy = id.UID
	}

	if att != nil {
		var res session.Result
		ctx, res, err = p.boot.EnsureAuthenticated(ctx)
		if err != nil {
			return nil, err
		}
		out.Session = res
		rec.SubmittedBy = res.Identity.UID

		blobPath := fmt.Sprintf("submissions/%s/%d_%s", res.Identity.UID, p.now().UnixMilli(), safeFileName(att.Name))
		url, err := p.blobs.Upload(ctx, blobPath, att.Body, att.Size, att.ContentType, percentReporter(onProgress))
		if err != nil {
			p.log.Warn().Err(err).Str("path", blobPath).Msg("subida de adjunto fallida")
			return nil, domain.Upload(err)
		}
		p.metrics.UploadedBytes(att.Size)
		rec.FileName = att.Name
		rec.FileURL = url
		rec.FilePath = blobPath
	}

	rec.ID = p.newID()
	rec.Timestamp = entity.FormatTimestamp(p.now())
	if err := p.submissions.Create(ctx, rec); err != nil {
		if rec.FilePath != "" {
			if derr := p.blobs.Delete(context.WithoutCancel(ctx), rec.FilePath); derr != nil {
				p.log.Warn().Err(derr).Str("path", rec.FilePath).Msg("no se pudo eliminar el adjunto huérfano")
			}
		}
		return nil, domain.Write(err)
	}

	p.metrics.SubmissionAccepted(string(rec.Type))
	p.log.Info().
		Str("id", rec.ID).
		Str("type", string(rec.Type)).
		Str("commodity", rec.Commodity).
		Bool("attachment", rec.FileURL != "").
		Msg("intención registrada")
	out.Submission = rec
	return out, nil
}

// validate devuelve el teléfono saneado.
func (p *Pipeline) validate(form Form) (string, error) {
	if !form.Type.Valid() {
		return "", domain.Validation("type", "tipo de intención inválido")
	}
	catalog := p.catalog.TradeConfig()
	if strings.TrimSpace(form.Commodity) == "" {
		return "", domain.Validation("commodity", "seleccione una mercancía")
	}
	if !catalog.HasCommodity(form.Commodity) {
		return "", domain.Validation("commodity", "mercancía fuera del catálogo")
	}
	if strings.TrimSpace(form.Quantity) == "" {
		return "", domain.Validation("quantity", "la cantidad es obligatoria")
	}
	if price := strings.TrimSpace(form.Price); price != "" {
		if _, err := decimal.NewFromString(strings.ReplaceAll(price, ",", "")); err != nil {
			return "", domain.Validation("price", "el precio debe ser numérico")
		}
	}
	if form.PaymentTerms != "" && !catalog.HasPaymentTerm(form.PaymentTerms) {
		return "", domain.Validation("paymentTerms", "término de pago fuera del catálogo")
	}
	if form.Incoterms != "" && !catalog.HasIncoterm(form.Incoterms) {
		return "", domain.Validation("incoterms", "incoterm fuera del catálogo")
	}
	phone := entity.SanitizePhone(form.ContactPhone)
	if !entity.IsDigits(phone) {
		return "", domain.Validation("contactPhone", "el teléfono debe contener solo dígitos")
	}
	return phone, nil
}

// percentReporter traduce bytes a porcentaje; nunca reporta 0.
func percentReporter(fn ProgressFunc) repository.ProgressFunc {
	if fn == nil {
		return nil
	}
	return func(done, total int64) {
		pct := 100
		if total > 0 {
			pct = int(done * 100 / total)
		}
		fn(min(max(1, pct), 100))
	}
}

func safeFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "document"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, base)
}
