package websearch

import (
	"context"
)

// SearchType tags a query so the provider can steer the answer toward the
// right kind of agricultural information. Unknown tags are not an error:
// the provider falls back to the general enhancement but echoes the tag back.
type SearchType string

const (
	TypeGeneral SearchType = "general"
	TypeWeather SearchType = "weather"
	TypePrices  SearchType = "prices"
	TypeNews    SearchType = "news"
	TypeAlerts  SearchType = "alerts"
)

func (t SearchType) IsValid() bool {
	switch t {
	case TypeGeneral, TypeWeather, TypePrices, TypeNews, TypeAlerts:
		return true
	}
	return false
}

func (t SearchType) String() string { return string(t) }

// Searcher is the external search surface. Every method is total: transport
// and API failures come back inside the Result, never as a Go error, so
// callers can always render something to the user.
type Searcher interface {
	Search(ctx context.Context, query string, searchType SearchType) *Result
	GetWeatherForecast(ctx context.Context, location string, days int) *Result
	GetMarketPrices(ctx context.Context, commodity, market string) *Result
	GetAgriculturalNews(ctx context.Context, topic, region string) *Result
	GetPestDiseaseAlerts(ctx context.Context, region string, crops []string) *Result
	HealthCheck(ctx context.Context) bool
}

// Result is the envelope every search operation returns. Exactly one of
// Answer / Error is populated, matching Success.
type Result struct {
	Success    bool
	Answer     string
	SearchType SearchType
	Sources    []string
	Timestamp  string // ISO-8601, call time

	// set only on failure
	Error   string
	Message string

	// typed payloads, attached by the domain-specific operations on success
	Weather *WeatherData
	Prices  *PriceData
	News    []NewsItem
	Alerts  []PestAlert
}

type WeatherData struct {
	Summary            string
	Forecast           []DailyForecast
	AgriculturalImpact string
}

type DailyForecast struct {
	Date        string
	TempMin     float64
	TempMax     float64
	RainfallMM  float64
	HumidityPct float64
	WindSpeed   float64
}

type PriceData struct {
	Commodity    string
	CurrentPrice float64
	Currency     string
	Unit         string
	Trend        string
	LastUpdated  string
}

type NewsItem struct {
	Title     string
	Summary   string
	Relevance string
}

type PestAlert struct {
	Type              string
	Name              string
	Severity          string
	AffectedCrops     []string
	RecommendedAction string
}
