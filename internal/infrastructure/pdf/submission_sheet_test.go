package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmorgan/trading-portal/internal/domain/entity"
)

func TestFormatPrice(t *testing.T) {
	cases := map[string]string{
		"1250000":    "1,250,000.00",
		"99.5":       "99.50",
		"-1000":      "-1,000.00",
		"a convenir": "a convenir",
		"":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatPrice(in), "precio %q", in)
	}
}

func TestGenerate_ProducePDF(t *testing.T) {
	s := &entity.TradeSubmission{
		ID:            "sub-1",
		Type:          entity.SubmissionSeller,
		Commodity:     "Urea 46%",
		Quantity:      "25,000 MT",
		Price:         "385",
		Timestamp:     "2026-01-02T03:04:05.000Z",
		Status:        entity.StatusPending,
		ClientName:    "Acme Fertilizers",
		FileName:      "sco.pdf",
		FileURL:       "http://localhost:8080/files/submissions/u1/1_sco.pdf",
		SocialType:    "WhatsApp",
		SocialAccount: "+44 7700",
	}
	out, err := NewSubmissionSheetGenerator().Generate(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "el resultado debe ser un PDF")
}
