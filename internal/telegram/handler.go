package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/agrosavjet/agro-bot/internal/domain"
	"github.com/agrosavjet/agro-bot/internal/service"
)

type Handler struct {
	bot *Bot
}

func NewHandler(bot *Bot) *Handler {
	return &Handler{bot: bot}
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	h.bot.logger.Info("received message",
		zap.Int64("user_id", msg.From.ID),
		zap.String("username", msg.From.UserName),
		zap.Bool("is_command", msg.IsCommand()),
	)

	if !h.bot.rateLimiter.Allow(msg.From.ID) {
		if h.bot.metrics != nil {
			h.bot.metrics.RecordRateLimitHit()
		}
		retry := h.bot.rateLimiter.RetryAfter(msg.From.ID)
		h.bot.Send(msg.Chat.ID, fmt.Sprintf("Previše upita. Pokušajte ponovno za %d s.", int(retry.Seconds())+1))
		return
	}

	start := time.Now()
	command := "query"
	if msg.IsCommand() {
		command = msg.Command()
	}

	h.dispatch(ctx, msg)

	if h.bot.metrics != nil {
		h.bot.metrics.RecordCommand(command, "processed", time.Since(start))
	}
}

func (h *Handler) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		h.handleSearch(ctx, msg, msg.Text)
		return
	}

	switch msg.Command() {
	case "start":
		h.handleStart(msg)
	case "help":
		h.handleHelp(msg)
	case "weather":
		h.handleWeather(ctx, msg)
	case "prices":
		h.handlePrices(ctx, msg)
	case "news":
		h.handleNews(ctx, msg)
	case "alerts":
		h.handleAlerts(ctx, msg)
	case "briefing":
		h.handleBriefing(ctx, msg)
	case "history":
		h.handleHistory(ctx, msg)
	case "status":
		h.handleStatus(ctx, msg)
	default:
		h.bot.Send(msg.Chat.ID, "Nepoznata naredba. Koristite /help za popis naredbi.")
	}
}

func (h *Handler) handleStart(msg *tgbotapi.Message) {
	h.bot.Send(msg.Chat.ID, "Dobrodošli! Ja sam poljoprivredni asistent: vrijeme, cijene, vijesti i upozorenja na štetnike.\n\nKoristite /help za popis naredbi.")
}

func (h *Handler) handleHelp(msg *tgbotapi.Message) {
	helpText := `<b>Dostupne naredbe:</b>

/weather LOKACIJA [DANA] - Vremenska prognoza za poljoprivredu
/prices KULTURA [TRŽIŠTE] - Trenutne tržišne cijene
/news [TEMA] - Nedavne poljoprivredne vijesti
/alerts REGIJA KULTURA,KULTURA - Upozorenja na štetnike i bolesti
/briefing LOKACIJA KULTURA,KULTURA - Dnevni pregled
/history - Vaši nedavni upiti
/status - Dostupnost servisa pretrage

Ili jednostavno napišite pitanje.`

	h.bot.Send(msg.Chat.ID, helpText)
}

func (h *Handler) handleSearch(ctx context.Context, msg *tgbotapi.Message, text string) {
	h.bot.SendTyping(msg.Chat.ID)

	result, err := h.bot.advisor.Search(ctx, &domain.QueryRequest{
		UserID: msg.From.ID,
		Text:   text,
	})
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, FormatResult(result))
}

func (h *Handler) handleWeather(ctx context.Context, msg *tgbotapi.Message) {
	location, days, err := ParseWeatherArgs(msg.CommandArguments())
	if err != nil {
		h.bot.Send(msg.Chat.ID, "Primjer: /weather Zagreb 5")
		return
	}

	h.bot.SendTyping(msg.Chat.ID)

	result, err := h.bot.advisor.Weather(ctx, msg.From.ID, location, days)
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, FormatResult(result))
}

func (h *Handler) handlePrices(ctx context.Context, msg *tgbotapi.Message) {
	commodity, market, err := ParsePricesArgs(msg.CommandArguments())
	if err != nil {
		h.bot.Send(msg.Chat.ID, "Primjer: /prices pšenica Osijek")
		return
	}

	h.bot.SendTyping(msg.Chat.ID)

	result, err := h.bot.advisor.Prices(ctx, msg.From.ID, commodity, market)
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, FormatResult(result))
}

func (h *Handler) handleNews(ctx context.Context, msg *tgbotapi.Message) {
	h.bot.SendTyping(msg.Chat.ID)

	topic := msg.CommandArguments()
	result, err := h.bot.advisor.News(ctx, msg.From.ID, topic, "")
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, FormatResult(result))
}

func (h *Handler) handleAlerts(ctx context.Context, msg *tgbotapi.Message) {
	region, crops, err := ParseAlertsArgs(msg.CommandArguments())
	if err != nil {
		h.bot.Send(msg.Chat.ID, "Primjer: /alerts Slavonija pšenica,kukuruz")
		return
	}

	h.bot.SendTyping(msg.Chat.ID)

	result, err := h.bot.advisor.Alerts(ctx, msg.From.ID, region, crops)
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, FormatResult(result))
}

func (h *Handler) handleBriefing(ctx context.Context, msg *tgbotapi.Message) {
	location, crops, err := ParseBriefingArgs(msg.CommandArguments())
	if err != nil {
		h.bot.Send(msg.Chat.ID, "Primjer: /briefing Osijek pšenica,kukuruz")
		return
	}

	h.bot.SendTyping(msg.Chat.ID)

	briefing, err := h.bot.advisor.DailyBriefing(ctx, service.BriefingRequest{
		UserID:   msg.From.ID,
		Location: location,
		Crops:    crops,
	})
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, FormatBriefing(briefing))
}

func (h *Handler) handleHistory(ctx context.Context, msg *tgbotapi.Message) {
	records, err := h.bot.advisor.History(ctx, msg.From.ID, h.bot.historyLimit)
	if err != nil {
		h.bot.logger.Error("failed to load history", zap.Error(err))
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, FormatHistory(records))
}

func (h *Handler) handleStatus(ctx context.Context, msg *tgbotapi.Message) {
	if h.bot.advisor.Healthy(ctx) {
		h.bot.Send(msg.Chat.ID, "Servis pretrage je dostupan. ✅")
	} else {
		h.bot.Send(msg.Chat.ID, "Servis pretrage trenutno nije dostupan. ❌")
	}
}

// fallthrough message used for anything without a dedicated mapping
const defaultErrorMessage = "Došlo je do pogreške. Pokušajte kasnije."

func mapErrorToMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		return "Prazan upit. Napišite svoje pitanje."
	case errors.Is(err, domain.ErrQueryTooLong):
		return fmt.Sprintf("Upit je predugačak. Maksimalno %d znakova.", domain.MaxQueryLength)
	case errors.Is(err, domain.ErrEmptyLocation):
		return "Navedite lokaciju."
	case errors.Is(err, domain.ErrInvalidDays):
		return fmt.Sprintf("Broj dana mora biti između 1 i %d.", service.MaxForecastDays)
	case errors.Is(err, domain.ErrEmptyCommodity):
		return "Navedite kulturu, npr. pšenica."
	case errors.Is(err, domain.ErrEmptyRegion):
		return "Navedite regiju."
	case errors.Is(err, domain.ErrNoCrops):
		return "Navedite barem jednu kulturu, odvojene zarezom."
	default:
		return defaultErrorMessage
	}
}
