package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jdmorgan/trading-portal/internal/domain/entity"
)

func TestAppConfig_CloneIndependiente(t *testing.T) {
	cfg := entity.DefaultAppConfig()
	clone := cfg.Clone()
	clone.HeroSlides[0].Title = "OTRO"
	clone.Quotes = append(clone.Quotes, entity.MarketQuote{ID: "q_9"})

	assert.Equal(t, "GOLD SPOT TRADING", cfg.HeroSlides[0].Title)
	assert.Len(t, cfg.Quotes, 4)
}

func TestAppConfig_SortSlidesYIndice(t *testing.T) {
	cfg := entity.AppConfig{HeroSlides: []entity.HeroSlide{
		{ID: "c", Order: 3}, {ID: "a", Order: 1}, {ID: "b", Order: 2},
	}}
	cfg.SortSlides()
	assert.Equal(t, 0, cfg.SlideIndex("a"))
	assert.Equal(t, 2, cfg.SlideIndex("c"))
	assert.Equal(t, -1, cfg.SlideIndex("z"))
}

func TestFormatTimestamp_OrdenLexicografico(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", -5*3600))
	a := entity.FormatTimestamp(base)
	b := entity.FormatTimestamp(base.Add(time.Millisecond))

	assert.Equal(t, "2026-01-02T08:04:05.000Z", a, "siempre en UTC con milisegundos")
	assert.Less(t, a, b)
}

func TestSubmissionType(t *testing.T) {
	assert.Equal(t, "LOI", entity.SubmissionBuyer.DocumentLabel())
	assert.Equal(t, "SCO", entity.SubmissionSeller.DocumentLabel())
	assert.False(t, entity.SubmissionType("broker").Valid())
}
