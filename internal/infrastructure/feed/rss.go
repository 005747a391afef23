// Package feed publica avisos y noticias del sector como RSS 2.0.
package feed

import (
	"bytes"
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/jdmorgan/trading-portal/internal/domain/entity"
)

// Channel metadatos del canal.
type Channel struct {
	Title       string
	Link        string
	Description string
}

// BuildRSS serializa los avisos (prioritarios primero) y las noticias del sector.
func BuildRSS(ch Channel, cfg entity.AppConfig, now time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	rss := doc.CreateElement("rss")
	rss.CreateAttr("version", "2.0")

	channel := rss.CreateElement("channel")
	channel.CreateElement("title").SetText(ch.Title)
	channel.CreateElement("link").SetText(ch.Link)
	channel.CreateElement("description").SetText(ch.Description)
	channel.CreateElement("lastBuildDate").SetText(now.UTC().Format(time.RFC1123Z))

	for _, a := range orderAnnouncements(cfg.Announcements) {
		item := channel.CreateElement("item")
		title := a.Title
		if a.IsPriority {
			title = "[PRIORITY] " + title
		}
		item.CreateElement("title").SetText(title)
		item.CreateElement("description").SetText(a.Content)
		item.CreateElement("category").SetText("Announcement")
		guid := item.CreateElement("guid")
		guid.CreateAttr("isPermaLink", "false")
		guid.SetText("announcement:" + a.ID)
		if d, err := time.Parse("2006-01-02", a.Date); err == nil {
			item.CreateElement("pubDate").SetText(d.UTC().Format(time.RFC1123Z))
		}
	}

	for _, n := range cfg.IndustryNews {
		item := channel.CreateElement("item")
		item.CreateElement("title").SetText(n.Title)
		if n.Summary != "" {
			item.CreateElement("description").SetText(n.Summary)
		}
		if n.SourceURL != "" {
			item.CreateElement("link").SetText(n.SourceURL)
		}
		if n.Category != "" {
			item.CreateElement("category").SetText(n.Category)
		}
		guid := item.CreateElement("guid")
		guid.CreateAttr("isPermaLink", "false")
		guid.SetText("news:" + n.ID)
	}

	doc.Indent(2)
	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("feed: serializar RSS: %w", err)
	}
	return out.Bytes(), nil
}

func orderAnnouncements(list []entity.Announcement) []entity.Announcement {
	out := make([]entity.Announcement, 0, len(list))
	for _, a := range list {
		if a.IsPriority {
			out = append(out, a)
		}
	}
	for _, a := range list {
		if !a.IsPriority {
			out = append(out, a)
		}
	}
	return out
}
