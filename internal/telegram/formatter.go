package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/agrosavjet/agro-bot/internal/domain"
	"github.com/agrosavjet/agro-bot/internal/service"
	"github.com/agrosavjet/agro-bot/internal/websearch"
)

// FormatResult renders a search result envelope for Telegram (HTML mode).
// Failures render the generic message, never the raw error text.
func FormatResult(result *websearch.Result) string {
	if !result.Success {
		return html.EscapeString(result.Message)
	}

	var sb strings.Builder
	sb.WriteString(html.EscapeString(result.Answer))

	if len(result.Sources) > 0 {
		sb.WriteString("\n\n<b>Izvori:</b>\n")
		for _, url := range result.Sources {
			escaped := html.EscapeString(url)
			sb.WriteString(fmt.Sprintf("• <a href=\"%s\">%s</a>\n", escaped, html.EscapeString(truncateURL(url, 60))))
		}
	}

	return sb.String()
}

func FormatBriefing(briefing *service.Briefing) string {
	var sb strings.Builder
	sb.WriteString("<b>Dnevni pregled</b>\n\n")

	sb.WriteString("<b>Vrijeme</b>\n")
	sb.WriteString(FormatResult(briefing.Weather))
	sb.WriteString("\n\n<b>Cijene</b>\n")
	sb.WriteString(FormatResult(briefing.Prices))
	sb.WriteString("\n\n<b>Upozorenja</b>\n")
	sb.WriteString(FormatResult(briefing.Alerts))

	return sb.String()
}

func FormatHistory(records []domain.QueryRecord) string {
	if len(records) == 0 {
		return "Povijest upita je prazna."
	}

	var sb strings.Builder
	sb.WriteString("<b>Vaši nedavni upiti:</b>\n\n")

	for i, rec := range records {
		status := "✅"
		if !rec.Success {
			status = "❌"
		}
		sb.WriteString(fmt.Sprintf("%d. %s [%s] %s\n   %s\n",
			i+1,
			status,
			rec.SearchType,
			html.EscapeString(rec.Query),
			rec.CreatedAt.Format("02.01.2006 15:04"),
		))
	}

	return sb.String()
}

func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var messages []string
	for len(text) > maxLen {
		cut := strings.LastIndex(text[:maxLen], "\n")
		if cut <= 0 {
			cut = maxLen
		}
		messages = append(messages, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		messages = append(messages, text)
	}
	return messages
}

func truncateURL(url string, maxLen int) string {
	if len(url) <= maxLen {
		return url
	}
	return url[:maxLen-3] + "..."
}
