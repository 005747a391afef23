package entity

// TradeConfig catálogo estático de referencia (solo lectura).
type TradeConfig struct {
	Commodities  []string `json:"commodities" yaml:"commodities"`
	PaymentTerms []string `json:"paymentTerms" yaml:"paymentTerms"`
	Incoterms    []string `json:"incoterms" yaml:"incoterms"`
	Countries    []string `json:"countries" yaml:"countries"`
}

// HasCommodity indica si la mercancía pertenece al catálogo.
func (c TradeConfig) HasCommodity(name string) bool {
	return contains(c.Commodities, name)
}

// HasPaymentTerm indica si el término de pago pertenece al catálogo.
func (c TradeConfig) HasPaymentTerm(name string) bool {
	return contains(c.PaymentTerms, name)
}

// HasIncoterm indica si el incoterm pertenece al catálogo.
func (c TradeConfig) HasIncoterm(name string) bool {
	return contains(c.Incoterms, name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
