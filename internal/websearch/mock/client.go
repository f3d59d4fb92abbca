package mock

import (
	"context"
	"sync"
	"time"

	"github.com/agrosavjet/agro-bot/internal/websearch"
)

// Client is a configurable Searcher double for service and handler tests.
type Client struct {
	Result  *websearch.Result
	Healthy bool
	Delay   time.Duration

	CallCount  int
	LastQuery  string
	LastType   websearch.SearchType
	AllQueries []string

	mu sync.Mutex
}

func New() *Client {
	return &Client{
		Result: &websearch.Result{
			Success:    true,
			Answer:     "Mock answer with a source: https://example.com/mock",
			SearchType: websearch.TypeGeneral,
			Sources:    []string{"https://example.com/mock"},
			Timestamp:  time.Now().Format(time.RFC3339),
		},
		Healthy: true,
	}
}

func (c *Client) WithResult(result *websearch.Result) *Client {
	c.Result = result
	return c
}

func (c *Client) WithFailure(errText, message string) *Client {
	c.Result = &websearch.Result{
		Success: false,
		Error:   errText,
		Message: message,
	}
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) Search(ctx context.Context, query string, searchType websearch.SearchType) *websearch.Result {
	c.mu.Lock()
	c.CallCount++
	c.LastQuery = query
	c.LastType = searchType
	c.AllQueries = append(c.AllQueries, query)
	delay := c.Delay
	result := c.Result
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return &websearch.Result{
				Success: false,
				Error:   ctx.Err().Error(),
				Message: "Search service temporarily unavailable",
			}
		case <-time.After(delay):
		}
	}

	out := *result
	out.SearchType = searchType
	return &out
}

func (c *Client) GetWeatherForecast(ctx context.Context, location string, days int) *websearch.Result {
	result := c.Search(ctx, location, websearch.TypeWeather)
	if result.Success {
		result.Weather = &websearch.WeatherData{
			Summary:            "Mock weather",
			Forecast:           []websearch.DailyForecast{},
			AgriculturalImpact: "Mock impact",
		}
	}
	return result
}

func (c *Client) GetMarketPrices(ctx context.Context, commodity, market string) *websearch.Result {
	result := c.Search(ctx, commodity+" "+market, websearch.TypePrices)
	if result.Success {
		result.Prices = &websearch.PriceData{Currency: "EUR", Unit: "ton", Trend: "stable"}
	}
	return result
}

func (c *Client) GetAgriculturalNews(ctx context.Context, topic, region string) *websearch.Result {
	result := c.Search(ctx, region+" "+topic, websearch.TypeNews)
	if result.Success {
		result.News = []websearch.NewsItem{{Title: "Mock news", Summary: "Summary", Relevance: "high"}}
	}
	return result
}

func (c *Client) GetPestDiseaseAlerts(ctx context.Context, region string, crops []string) *websearch.Result {
	result := c.Search(ctx, region, websearch.TypeAlerts)
	if result.Success {
		result.Alerts = []websearch.PestAlert{{Type: "pest", Name: "Mock alert", Severity: "medium"}}
	}
	return result
}

func (c *Client) HealthCheck(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount++
	return c.Healthy
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastQuery = ""
	c.LastType = ""
	c.AllQueries = nil
}

var _ websearch.Searcher = (*Client)(nil)
