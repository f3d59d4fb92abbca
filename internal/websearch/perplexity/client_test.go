package perplexity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/agrosavjet/agro-bot/internal/websearch"
)

func newTestServer(t *testing.T, statusCode int, answer string, capture *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(chatResponse{
			Choices: []choice{{Message: message{Role: "assistant", Content: answer}}},
		})
	}))
}

func newTestClient(url string) *Client {
	return New(Config{
		APIKey:  "test-key",
		BaseURL: url,
		Timeout: 5 * time.Second,
	}, zap.NewNop())
}

func TestClient_Search_EnhancementSuffix(t *testing.T) {
	tests := []struct {
		name       string
		searchType websearch.SearchType
		wantSuffix string
	}{
		{"weather", websearch.TypeWeather, "Include temperature, rainfall, humidity, wind speed. Provide daily breakdown."},
		{"prices", websearch.TypePrices, "Include current market prices, price trends, and comparison with previous period."},
		{"news", websearch.TypeNews, "Include recent developments, policy changes, and market updates."},
		{"alerts", websearch.TypeAlerts, "Include severity level, affected areas, and recommended actions."},
		{"general", websearch.TypeGeneral, "Provide comprehensive agricultural information with sources."},
		{"unrecognized falls back to general", websearch.SearchType("bogus"), "Provide comprehensive agricultural information with sources."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured chatRequest
			server := newTestServer(t, http.StatusOK, "answer", &captured)
			defer server.Close()

			client := newTestClient(server.URL)
			result := client.Search(context.Background(), "wheat outlook", tt.searchType)

			if !result.Success {
				t.Fatalf("Search() failed: %s", result.Error)
			}

			if len(captured.Messages) != 2 {
				t.Fatalf("got %d messages, want 2", len(captured.Messages))
			}

			user := captured.Messages[1].Content
			want := "wheat outlook. " + tt.wantSuffix
			if user != want {
				t.Errorf("user prompt = %q, want %q", user, want)
			}

			if result.SearchType != tt.searchType {
				t.Errorf("SearchType = %q, want tag echoed back as %q", result.SearchType, tt.searchType)
			}
		})
	}
}

func TestClient_Search_RequestShape(t *testing.T) {
	var captured chatRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse{Choices: []choice{{Message: message{Content: "ok"}}}})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.Search(context.Background(), "q", websearch.TypeGeneral)

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if captured.Model != defaultModel {
		t.Errorf("model = %q, want %q", captured.Model, defaultModel)
	}
	if captured.Temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", captured.Temperature)
	}
	if captured.MaxTokens != 1000 {
		t.Errorf("max_tokens = %d, want 1000", captured.MaxTokens)
	}
	if captured.Messages[0].Role != "system" || !strings.Contains(captured.Messages[0].Content, "Croatian farmers") {
		t.Errorf("system message = %+v, want agricultural assistant prompt", captured.Messages[0])
	}
}

func TestClient_Search_Success(t *testing.T) {
	answer := "Wheat prices are up.\nSee http://a.example twice: http://a.example\nAlso https://stats.example/prices?y=2026 and www.hapih.hr details at https://www.hapih.hr/alerts"

	server := newTestServer(t, http.StatusOK, answer, nil)
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Search(context.Background(), "wheat", websearch.TypePrices)

	if !result.Success {
		t.Fatalf("Search() failed: %s", result.Error)
	}
	if result.Answer != answer {
		t.Errorf("Answer = %q, want the body text back", result.Answer)
	}
	if result.Error != "" || result.Message != "" {
		t.Errorf("success result carries error fields: %q / %q", result.Error, result.Message)
	}

	if _, err := time.Parse(time.RFC3339, result.Timestamp); err != nil {
		t.Errorf("Timestamp %q is not RFC3339: %v", result.Timestamp, err)
	}

	want := []string{
		"http://a.example",
		"https://stats.example/prices?y=2026",
		"https://www.hapih.hr/alerts",
	}
	got := append([]string(nil), result.Sources...)
	sort.Strings(got)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("Sources = %v, want %v (duplicates collapsed)", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sources[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestClient_Search_APIError(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusUnauthorized, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		client := newTestClient(server.URL)
		result := client.Search(context.Background(), "q", websearch.TypeGeneral)
		server.Close()

		if result.Success {
			t.Fatalf("status %d: want failure result", code)
		}
		if want := "API error: " + strconv.Itoa(code); result.Error != want {
			t.Errorf("status %d: Error = %q, want %q", code, result.Error, want)
		}
		if result.Message != "Unable to fetch current information" {
			t.Errorf("status %d: Message = %q", code, result.Message)
		}
		if result.Answer != "" {
			t.Errorf("status %d: failure result carries an answer", code)
		}
	}
}

func TestClient_Search_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := newTestClient(server.URL)
	result := client.Search(context.Background(), "q", websearch.TypeGeneral)

	if result.Success {
		t.Fatal("want failure result on connection refused")
	}
	if result.Error == "" {
		t.Error("Error must carry the transport error text")
	}
	if result.Message != "Search service temporarily unavailable" {
		t.Errorf("Message = %q", result.Message)
	}
}

func TestClient_Search_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Search(context.Background(), "q", websearch.TypeGeneral)

	if result.Success {
		t.Fatal("want failure result on malformed body")
	}
	if result.Message != "Search service temporarily unavailable" {
		t.Errorf("Message = %q", result.Message)
	}
}

func TestClient_Search_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Search(context.Background(), "q", websearch.TypeGeneral)

	if result.Success {
		t.Fatal("want failure result on empty choices")
	}
	if result.Message != "Search service temporarily unavailable" {
		t.Errorf("Message = %q", result.Message)
	}
}

func TestClient_GetWeatherForecast(t *testing.T) {
	var captured chatRequest
	server := newTestServer(t, http.StatusOK, "sunny with light rain", &captured)
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.GetWeatherForecast(context.Background(), "Zagreb", 5)

	if !result.Success {
		t.Fatalf("GetWeatherForecast() failed: %s", result.Error)
	}

	prompt := captured.Messages[1].Content
	if !strings.Contains(prompt, "Zagreb") || !strings.Contains(prompt, "5 days") {
		t.Errorf("query = %q, want location and day count in it", prompt)
	}
	if result.SearchType != websearch.TypeWeather {
		t.Errorf("SearchType = %q, want weather", result.SearchType)
	}

	if result.Weather == nil {
		t.Fatal("Weather payload missing on success")
	}
	if result.Weather.Summary == "" || result.Weather.Forecast == nil || result.Weather.AgriculturalImpact == "" {
		t.Errorf("Weather payload incomplete: %+v", result.Weather)
	}
}

func TestClient_GetWeatherForecast_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.GetWeatherForecast(context.Background(), "Zagreb", 7)

	if result.Success {
		t.Fatal("want failure result")
	}
	if result.Weather != nil {
		t.Error("failure result must not carry a weather payload")
	}
}

func TestClient_GetMarketPrices(t *testing.T) {
	var captured chatRequest
	server := newTestServer(t, http.StatusOK, "around 210 EUR/t", &captured)
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.GetMarketPrices(context.Background(), "wheat", "Croatia")

	if !result.Success {
		t.Fatalf("GetMarketPrices() failed: %s", result.Error)
	}

	prompt := captured.Messages[1].Content
	if !strings.Contains(prompt, "Current wheat prices in Croatia") {
		t.Errorf("query = %q", prompt)
	}

	if result.Prices == nil {
		t.Fatal("Prices payload missing on success")
	}
	if result.Prices.Currency != "EUR" || result.Prices.Unit != "ton" || result.Prices.Trend != "stable" {
		t.Errorf("Prices placeholder = %+v", result.Prices)
	}
}

func TestClient_GetAgriculturalNews(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		want  string
	}{
		{"without topic", "", "Recent agricultural news Croatia"},
		{"with topic", "subsidies", "Recent agricultural news Croatia about subsidies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured chatRequest
			server := newTestServer(t, http.StatusOK, "news body", &captured)
			defer server.Close()

			client := newTestClient(server.URL)
			result := client.GetAgriculturalNews(context.Background(), tt.topic, "Croatia")

			if !result.Success {
				t.Fatalf("GetAgriculturalNews() failed: %s", result.Error)
			}

			prompt := captured.Messages[1].Content
			if !strings.HasPrefix(prompt, tt.want) {
				t.Errorf("query = %q, want prefix %q", prompt, tt.want)
			}

			if len(result.News) != 1 {
				t.Fatalf("News = %v, want single placeholder item", result.News)
			}
		})
	}
}

func TestClient_GetPestDiseaseAlerts(t *testing.T) {
	var captured chatRequest
	server := newTestServer(t, http.StatusOK, "no major outbreaks", &captured)
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.GetPestDiseaseAlerts(context.Background(), "Slavonia", []string{"wheat", "maize"})

	if !result.Success {
		t.Fatalf("GetPestDiseaseAlerts() failed: %s", result.Error)
	}

	prompt := captured.Messages[1].Content
	if !strings.Contains(prompt, "wheat, maize") || !strings.Contains(prompt, "Slavonia") {
		t.Errorf("query = %q, want region and comma-joined crops", prompt)
	}

	if len(result.Alerts) != 1 {
		t.Fatalf("Alerts = %v, want single placeholder alert", result.Alerts)
	}
	if result.Alerts[0].Type != "pest" || result.Alerts[0].Severity != "medium" {
		t.Errorf("Alerts placeholder = %+v", result.Alerts[0])
	}
}

func TestClient_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       bool
	}{
		{"ok", http.StatusOK, true},
		{"server error", http.StatusInternalServerError, false},
		{"unauthorized", http.StatusUnauthorized, false},
		{"accepted is not ok", http.StatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			if got := client.HealthCheck(context.Background()); got != tt.want {
				t.Errorf("HealthCheck() = %v, want %v", got, tt.want)
			}
			if gotPath != "/models" {
				t.Errorf("path = %q, want /models", gotPath)
			}
		})
	}
}

func TestClient_HealthCheck_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)
	if client.HealthCheck(context.Background()) {
		t.Error("HealthCheck() = true on refused connection")
	}
}

func TestExtractSources(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   []string
	}{
		{
			name:   "duplicates collapsed",
			answer: "see http://a.example twice: http://a.example",
			want:   []string{"http://a.example"},
		},
		{
			name:   "no urls",
			answer: "plain text\nwithout links",
			want:   []string{},
		},
		{
			name:   "www line without scheme yields nothing from pattern",
			answer: "see www.example.com for details",
			want:   []string{},
		},
		{
			name:   "multiple lines",
			answer: "first https://a.hr/x\nsecond http://b.hr",
			want:   []string{"http://b.hr", "https://a.hr/x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractSources(tt.answer)
			sort.Strings(got)
			if len(got) != len(tt.want) {
				t.Fatalf("extractSources() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("extractSources()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
