package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agrosavjet/agro-bot/internal/websearch"
)

const (
	defaultBaseURL = "https://api.perplexity.ai"
	defaultModel   = "pplx-70b-online" // online model, needed for current info

	systemPrompt = "You are an agricultural assistant providing current information for Croatian farmers. Always cite sources."

	temperature = 0.2 // lower temperature for factual responses
	maxTokens   = 1000
)

// enhancement suffixes appended to the query per search type
var enhancements = map[websearch.SearchType]string{
	websearch.TypeWeather: "Include temperature, rainfall, humidity, wind speed. Provide daily breakdown.",
	websearch.TypePrices:  "Include current market prices, price trends, and comparison with previous period.",
	websearch.TypeNews:    "Include recent developments, policy changes, and market updates.",
	websearch.TypeAlerts:  "Include severity level, affected areas, and recommended actions.",
	websearch.TypeGeneral: "Provide comprehensive agricultural information with sources.",
}

type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	HealthTimeout time.Duration
}

// Client calls the Perplexity chat-completions API for information that is
// not in the local knowledge base (weather, prices, news, pest alerts).
//
// A missing API key is not validated here: the remote service rejects such
// requests and the rejection comes back as a failure Result.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	health  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HealthTimeout == 0 {
		cfg.HealthTimeout = 5 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		health:  &http.Client{Timeout: cfg.HealthTimeout},
		logger:  logger,
	}
}

var _ websearch.Searcher = (*Client)(nil)

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []choice `json:"choices"`
}

type choice struct {
	Message message `json:"message"`
}

// Search issues one chat-completion request and maps the outcome into a
// Result. It never returns a Go error: remote rejections and transport
// failures are both represented as failure Results. Single attempt, no retry.
func (c *Client) Search(ctx context.Context, query string, searchType websearch.SearchType) *websearch.Result {
	payload := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: enhanceQuery(query, searchType)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return c.unavailable(searchType, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return c.unavailable(searchType, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return c.unavailable(searchType, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.unavailable(searchType, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("perplexity API error",
			zap.Int("status", resp.StatusCode),
			zap.String("search_type", searchType.String()),
		)
		return &websearch.Result{
			Success: false,
			Error:   fmt.Sprintf("API error: %d", resp.StatusCode),
			Message: "Unable to fetch current information",
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return c.unavailable(searchType, fmt.Errorf("unmarshal response: %w", err))
	}

	if len(chatResp.Choices) == 0 {
		return c.unavailable(searchType, fmt.Errorf("empty response"))
	}

	answer := chatResp.Choices[0].Message.Content

	return &websearch.Result{
		Success:    true,
		Answer:     answer,
		SearchType: searchType,
		Sources:    extractSources(answer),
		Timestamp:  time.Now().Format(time.RFC3339),
	}
}

// GetWeatherForecast asks for a forecast shaped for agricultural planning.
func (c *Client) GetWeatherForecast(ctx context.Context, location string, days int) *websearch.Result {
	query := fmt.Sprintf("Weather forecast for %s next %d days for farming agricultural planning temperature rainfall humidity", location, days)

	result := c.Search(ctx, query, websearch.TypeWeather)

	if result.Success {
		result.Weather = parseWeatherResponse(result.Answer)
	}

	return result
}

// GetMarketPrices asks for current commodity prices on the given market.
func (c *Client) GetMarketPrices(ctx context.Context, commodity, market string) *websearch.Result {
	query := fmt.Sprintf("Current %s prices in %s agricultural market EUR per ton", commodity, market)

	result := c.Search(ctx, query, websearch.TypePrices)

	if result.Success {
		result.Prices = parsePriceResponse(result.Answer)
	}

	return result
}

// GetAgriculturalNews asks for recent agricultural news, optionally narrowed
// to a topic.
func (c *Client) GetAgriculturalNews(ctx context.Context, topic, region string) *websearch.Result {
	query := fmt.Sprintf("Recent agricultural news %s", region)
	if topic != "" {
		query += fmt.Sprintf(" about %s", topic)
	}

	result := c.Search(ctx, query, websearch.TypeNews)

	if result.Success {
		result.News = parseNewsResponse(result.Answer)
	}

	return result
}

// GetPestDiseaseAlerts asks for current pest and disease warnings for the
// given crops.
func (c *Client) GetPestDiseaseAlerts(ctx context.Context, region string, crops []string) *websearch.Result {
	query := fmt.Sprintf("Current pest disease alerts warnings %s for %s crops", region, strings.Join(crops, ", "))

	result := c.Search(ctx, query, websearch.TypeAlerts)

	if result.Success {
		result.Alerts = parseAlertsResponse(result.Answer)
	}

	return result
}

// HealthCheck probes the models endpoint. True iff the API answers 200.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		c.logger.Error("health check failed", zap.Error(err))
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.health.Do(req)
	if err != nil {
		c.logger.Error("health check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

func (c *Client) unavailable(searchType websearch.SearchType, err error) *websearch.Result {
	c.logger.Error("perplexity search failed",
		zap.Error(err),
		zap.String("search_type", searchType.String()),
	)
	return &websearch.Result{
		Success: false,
		Error:   err.Error(),
		Message: "Search service temporarily unavailable",
	}
}

func enhanceQuery(query string, searchType websearch.SearchType) string {
	enhancement, ok := enhancements[searchType]
	if !ok {
		enhancement = enhancements[websearch.TypeGeneral]
	}
	return fmt.Sprintf("%s. %s", query, enhancement)
}

var urlPattern = regexp.MustCompile(`http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\\(\\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)

// extractSources scans the answer line by line for anything URL-looking.
// Deliberately coarse: Perplexity usually lists sources on their own lines,
// and the line filter plus pattern match is enough in practice. Duplicates
// are collapsed; order is not preserved.
func extractSources(answer string) []string {
	seen := make(map[string]struct{})

	for _, line := range strings.Split(answer, "\n") {
		if !strings.Contains(line, "http") && !strings.Contains(line, "www.") {
			continue
		}
		for _, url := range urlPattern.FindAllString(line, -1) {
			seen[url] = struct{}{}
		}
	}

	sources := make([]string, 0, len(seen))
	for url := range seen {
		sources = append(sources, url)
	}
	return sources
}

// The parse* functions below return fixed placeholder structures instead of
// parsing the model's free-text answer. Known gap carried over from the
// original service.
// TODO: replace with real extraction of the daily breakdown, price figures
// and alert entries from the answer text.

func parseWeatherResponse(answer string) *websearch.WeatherData {
	return &websearch.WeatherData{
		Summary:            "Weather data extracted from response",
		Forecast:           []websearch.DailyForecast{},
		AgriculturalImpact: "Suitable for most farming activities",
	}
}

func parsePriceResponse(answer string) *websearch.PriceData {
	return &websearch.PriceData{
		Commodity:    "",
		CurrentPrice: 0,
		Currency:     "EUR",
		Unit:         "ton",
		Trend:        "stable",
		LastUpdated:  time.Now().Format(time.RFC3339),
	}
}

func parseNewsResponse(answer string) []websearch.NewsItem {
	return []websearch.NewsItem{
		{
			Title:     "Agricultural news item",
			Summary:   "News summary",
			Relevance: "high",
		},
	}
}

func parseAlertsResponse(answer string) []websearch.PestAlert {
	return []websearch.PestAlert{
		{
			Type:              "pest",
			Name:              "Alert name",
			Severity:          "medium",
			AffectedCrops:     []string{},
			RecommendedAction: "Monitor fields",
		},
	}
}
