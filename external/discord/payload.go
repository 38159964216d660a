package discord

import (
	"time"

	"github.com/Volence/elemental-website-sub005/internal/usecase"
)

type messagePayload struct {
	Content         string          `json:"content"`
	Embeds          []embedPayload  `json:"embeds"`
	AllowedMentions allowedMentions `json:"allowed_mentions"`
}

type allowedMentions struct {
	Parse []string `json:"parse"`
}

type embedPayload struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url,omitempty"`
	Color       int            `json:"color,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Thumbnail   *embedImage    `json:"thumbnail,omitempty"`
	Footer      *embedFooter   `json:"footer,omitempty"`
	Fields      []fieldPayload `json:"fields,omitempty"`
}

type embedImage struct {
	URL string `json:"url"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type fieldPayload struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type messageResponse struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rateLimitResponse struct {
	RetryAfter float64 `json:"retry_after"`
	Global     bool    `json:"global"`
}

// toPayload maps a rendered card onto Discord's message shape. Mentions are
// disabled so card text can never ping anyone.
func toPayload(content usecase.MessageContent) messagePayload {
	out := messagePayload{
		Content:         content.Content,
		Embeds:          make([]embedPayload, 0, len(content.Embeds)),
		AllowedMentions: allowedMentions{Parse: []string{}},
	}
	for _, embed := range content.Embeds {
		item := embedPayload{
			Title:       embed.Title,
			Description: embed.Description,
			URL:         embed.URL,
			Color:       embed.Color,
		}
		if embed.Timestamp != nil {
			item.Timestamp = embed.Timestamp.UTC().Format(time.RFC3339)
		}
		if embed.ThumbnailURL != "" {
			item.Thumbnail = &embedImage{URL: embed.ThumbnailURL}
		}
		if embed.Footer != "" {
			item.Footer = &embedFooter{Text: embed.Footer}
		}
		for _, field := range embed.Fields {
			item.Fields = append(item.Fields, fieldPayload{Name: field.Name, Value: field.Value, Inline: field.Inline})
		}
		out.Embeds = append(out.Embeds, item)
	}
	return out
}
