package entity

import "sort"

// HeroSlide una entrada del banner rotativo de la portada.
type HeroSlide struct {
	ID       string `json:"id"`
	Img      string `json:"img"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Order    int    `json:"order"`
}

// Announcement aviso del sistema mostrado a los miembros.
type Announcement struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Date       string `json:"date"`
	IsPriority bool   `json:"isPriority"`
}

// MarketQuote cotización mostrada en el ticker.
type MarketQuote struct {
	ID        string `json:"id"`
	Symbol    string `json:"symbol"`
	Price     string `json:"price"`
	Change    string `json:"change"`
	IsUp      bool   `json:"isUp"`
	SourceURL string `json:"sourceUrl,omitempty"`
}

// IndustryNews noticia del sector.
type IndustryNews struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Time      string `json:"time"`
	Category  string `json:"category"`
	SourceURL string `json:"sourceUrl,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// AppConfig configuración singleton del sitio (settings/app_config).
type AppConfig struct {
	LogoText      string         `json:"logoText"`
	LogoIcon      string         `json:"logoIcon"`
	HeroSlides    []HeroSlide    `json:"heroSlides"`
	Announcements []Announcement `json:"announcements"`
	Quotes        []MarketQuote  `json:"quotes"`
	IndustryNews  []IndustryNews `json:"industryNews"`
}

// Clone devuelve una copia profunda.
func (c AppConfig) Clone() AppConfig {
	out := c
	out.HeroSlides = append([]HeroSlide(nil), c.HeroSlides...)
	out.Announcements = append([]Announcement(nil), c.Announcements...)
	out.Quotes = append([]MarketQuote(nil), c.Quotes...)
	out.IndustryNews = append([]IndustryNews(nil), c.IndustryNews...)
	return out
}

// SortSlides ordena los slides por Order (estable).
func (c *AppConfig) SortSlides() {
	sort.SliceStable(c.HeroSlides, func(i, j int) bool {
		return c.HeroSlides[i].Order < c.HeroSlides[j].Order
	})
}

// SlideIndex devuelve la posición del slide con ese id o -1.
func (c AppConfig) SlideIndex(id string) int {
	for i, s := range c.HeroSlides {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// DefaultAppConfig configuración inicial usada cuando el almacén no tiene datos.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		LogoText: "JD MORGAN",
		LogoIcon: "fa-earth-americas",
		HeroSlides: []HeroSlide{
			{ID: "1", Img: "https://40072.jdmorgan.ca/pictures/hero-gold.jpg", Title: "GOLD SPOT TRADING", Subtitle: "Gold Spot Trading & Wealth Management", Order: 1},
			{ID: "2", Img: "https://images.unsplash.com/photo-1532601224476-15c79f2f7a51?q=80&w=2070&auto=format&fit=crop", Title: "GLOBAL ENERGY ALLOCATION", Subtitle: "Global Energy Allocation Network", Order: 2},
			{ID: "3", Img: "https://images.unsplash.com/photo-1566433311776-e7843431637c?q=80&w=2070&auto=format&fit=crop", Title: "BULK COMMODITY TRADING", Subtitle: "Bulk Commodity Trading & Logistics", Order: 3},
		},
		Announcements: []Announcement{
			{ID: "ann_1", Title: "Security upgrade: AI allocation engine V3.0", Content: "The quantitative allocation system is now live on every trading terminal, improving LOI and SCO matching.", Date: "2026-05-12", IsPriority: true},
		},
		Quotes: []MarketQuote{
			{ID: "q_1", Symbol: "XAU/USD (Gold)", Price: "2,345.20", Change: "+1.45%", IsUp: true, SourceURL: "https://www.kitco.com"},
			{ID: "q_2", Symbol: "EN590 (Diesel)", Price: "845.00", Change: "-0.20%", IsUp: false, SourceURL: "https://www.platts.com"},
			{ID: "q_3", Symbol: "XAG/USD (Silver)", Price: "28.14", Change: "+0.85%", IsUp: true, SourceURL: "https://www.kitco.com"},
			{ID: "q_4", Symbol: "BRENT OIL", Price: "84.15", Change: "-1.10%", IsUp: false, SourceURL: "https://www.bloomberg.com"},
		},
		IndustryNews: []IndustryNews{
			{ID: "news_1", Title: "Copper supply outlook cut, base metals rally", Time: "3h ago", Category: "Metals", SourceURL: "https://www.reuters.com"},
			{ID: "news_2", Title: "Middle East tension strains energy supply chains", Time: "1h ago", Category: "Energy", SourceURL: "https://www.bloomberg.com"},
		},
	}
}
