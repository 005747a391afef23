package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmorgan/trading-portal/internal/infrastructure/catalog"
)

func TestLoad_Embebido(t *testing.T) {
	c, err := catalog.Load("")
	require.NoError(t, err)
	cfg := c.TradeConfig()
	assert.True(t, cfg.HasCommodity("Gold Bullion (AU)"))
	assert.True(t, cfg.HasPaymentTerm("SBLC"))
	assert.True(t, cfg.HasIncoterm("CIF"))
	assert.Contains(t, cfg.Countries, "Canada")
}

func TestLoad_ArchivoPropio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commodities: [Urea]\nincoterms: [FOB]\n"), 0o600))

	c, err := catalog.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Urea"}, c.TradeConfig().Commodities)
	assert.False(t, c.TradeConfig().HasCommodity("Iron Ore"))
}

func TestParse_SinMercancias(t *testing.T) {
	_, err := catalog.Parse([]byte("incoterms: [FOB]\n"))
	assert.Error(t, err)
}

func TestTradeConfig_DevuelveCopia(t *testing.T) {
	c, err := catalog.Load("")
	require.NoError(t, err)
	cfg := c.TradeConfig()
	cfg.Commodities[0] = "mutado"
	assert.NotEqual(t, "mutado", c.TradeConfig().Commodities[0])
}
