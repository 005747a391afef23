// Package catalog carga el catálogo de referencia (mercancías, términos de
// pago, incoterms, países) desde YAML.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jdmorgan/trading-portal/internal/domain/entity"
)

//go:embed trade_config.yaml
var embedded []byte

// Catalog catálogo inmutable cargado al arrancar.
type Catalog struct {
	cfg entity.TradeConfig
}

// Load lee el catálogo de path; con path vacío usa el catálogo embebido.
func Load(path string) (*Catalog, error) {
	data := embedded
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("leer catálogo %s: %w", path, err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodifica y valida un catálogo YAML.
func Parse(data []byte) (*Catalog, error) {
	var cfg entity.TradeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decodificar catálogo: %w", err)
	}
	if len(cfg.Commodities) == 0 {
		return nil, fmt.Errorf("catálogo sin mercancías")
	}
	return &Catalog{cfg: cfg}, nil
}

// TradeConfig devuelve una copia del catálogo.
func (c *Catalog) TradeConfig() entity.TradeConfig {
	return entity.TradeConfig{
		Commodities:  append([]string(nil), c.cfg.Commodities...),
		PaymentTerms: append([]string(nil), c.cfg.PaymentTerms...),
		Incoterms:    append([]string(nil), c.cfg.Incoterms...),
		Countries:    append([]string(nil), c.cfg.Countries...),
	}
}
