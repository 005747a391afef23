// Package pdf genera la ficha imprimible de una intención de compra (LOI) o
// venta (SCO) para el back-office.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: JD Morgan Global Trading │ LOI/SCO + ID + Fecha     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  OPERACIÓN: Commodity / Cantidad / Precio / Términos         │
//	│  CONTACTO: Cliente / Email / Teléfono / Región / Red social  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ADJUNTO: nombre + QR con la URL del documento               │
//	│  FOOTER: estado + leyenda                                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jdmorgan/trading-portal/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 11, Green: 37, Blue: 69}
	colorGold    = &props.Color{Red: 191, Green: 155, Blue: 48}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// SubmissionSheetGenerator genera la ficha PDF con Maroto v2.
type SubmissionSheetGenerator struct{}

// NewSubmissionSheetGenerator construye el generador.
func NewSubmissionSheetGenerator() *SubmissionSheetGenerator { return &SubmissionSheetGenerator{} }

// Generate devuelve los bytes del PDF de la intención.
func (g *SubmissionSheetGenerator) Generate(_ context.Context, s *entity.TradeSubmission) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(s.Type.DocumentLabel()+" "+s.ID, true).
		WithAuthor("JD Morgan Global Trading", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(s))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGold, Thickness: 0.6}))
	m.AddRows(sectionTitle("TRADE DETAILS"))
	m.AddRows(fieldRows([][2]string{
		{"Commodity", s.Commodity},
		{"Quantity", s.Quantity},
		{"Target price", formatPrice(s.Price)},
		{"Payment terms", s.PaymentTerms},
		{"Incoterms", s.Incoterms},
	})...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionTitle("CONTACT"))
	m.AddRows(fieldRows([][2]string{
		{"Client", s.ClientName},
		{"Email", s.ContactEmail},
		{"Phone", s.ContactPhone},
		{"Region", s.ContactRegion},
		{"Social", joinSocial(s.SocialType, s.SocialAccount)},
	})...)

	if s.FileURL != "" {
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(attachmentRow(s))
	}

	m.AddRows(line.NewRow(4))
	m.AddRows(footerRow(s))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar ficha %s: %w", s.ID, err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(s *entity.TradeSubmission) core.Row {
	kind := "LETTER OF INTENT (LOI)"
	if s.Type == entity.SubmissionSeller {
		kind = "SOFT CORPORATE OFFER (SCO)"
	}
	return row.New(20).Add(
		col.New(7).Add(
			text.New("JD MORGAN GLOBAL TRADING", props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New("Global commodity sourcing desk", props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(kind, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorGold, Top: 1,
			}),
			text.New(s.ID, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 7,
			}),
			text.New("Submitted: "+nonEmpty(s.Timestamp, "—"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func fieldRows(fields [][2]string) []core.Row {
	rows := make([]core.Row, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, row.New(6).Add(
			col.New(4).Add(text.New(f[0]+":", props.Text{Style: fontstyle.Bold, Size: 9, Top: 1})),
			col.New(8).Add(text.New(nonEmpty(f[1], "—"), props.Text{Size: 9, Top: 1})),
		))
	}
	return rows
}

func attachmentRow(s *entity.TradeSubmission) core.Row {
	return row.New(36).Add(
		col.New(3).Add(code.NewQr(s.FileURL, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("SIGNED "+s.Type.DocumentLabel(), props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 4, Left: 3,
			}),
			text.New(nonEmpty(s.FileName, "document"), props.Text{Size: 9, Top: 11, Left: 3}),
			text.New(s.FileURL, props.Text{Size: 6.5, Top: 18, Left: 3, Color: colorGray}),
		),
	)
}

func footerRow(s *entity.TradeSubmission) core.Row {
	return row.New(14).Add(col.New(12).Add(
		text.New("Status: "+string(s.Status), props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1,
		}),
		text.New(
			"This sheet summarises an indication of interest received through the JD Morgan portal. "+
				"It is not a binding contract and remains subject to due diligence.",
			props.Text{Size: 6.5, Color: colorGray, Top: 7},
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func joinSocial(kind, account string) string {
	switch {
	case kind == "":
		return account
	case account == "":
		return ""
	default:
		return kind + ": " + account
	}
}

// formatPrice normaliza el precio a dos decimales con separador de miles.
// Ej: "1250000" → "1,250,000.00". Si no es numérico se devuelve tal cual.
func formatPrice(raw string) string {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	fixed := d.StringFixed(2)
	sign := ""
	if fixed[0] == '-' {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-3:]
	return sign + groupThousands(intPart) + frac
}

// groupThousands inserta comas de miles en un string de dígitos.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
