package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agrosavjet/agro-bot/internal/domain"
	"github.com/agrosavjet/agro-bot/internal/metrics"
	"github.com/agrosavjet/agro-bot/internal/repository"
	"github.com/agrosavjet/agro-bot/internal/websearch"
)

const (
	DefaultForecastDays = 7
	MaxForecastDays     = 14
	DefaultMarket       = "Croatia"
	DefaultRegion       = "Croatia"
)

// AdvisorService sits between the bot surface and the external search
// adapter: it validates input, applies defaults, records metrics and query
// history, and leaves the adapter's result envelope untouched.
type AdvisorService interface {
	Search(ctx context.Context, req *domain.QueryRequest) (*websearch.Result, error)
	Weather(ctx context.Context, userID int64, location string, days int) (*websearch.Result, error)
	Prices(ctx context.Context, userID int64, commodity, market string) (*websearch.Result, error)
	News(ctx context.Context, userID int64, topic, region string) (*websearch.Result, error)
	Alerts(ctx context.Context, userID int64, region string, crops []string) (*websearch.Result, error)
	History(ctx context.Context, userID int64, limit int) ([]domain.QueryRecord, error)
	DailyBriefing(ctx context.Context, req BriefingRequest) (*Briefing, error)
	Healthy(ctx context.Context) bool
}

type BriefingRequest struct {
	UserID   int64
	Location string
	Crops    []string
}

func (r BriefingRequest) Validate() error {
	if strings.TrimSpace(r.Location) == "" {
		return domain.ErrEmptyLocation
	}
	if len(r.Crops) == 0 {
		return domain.ErrNoCrops
	}
	return nil
}

// Briefing bundles the morning overview a farmer asks for in one command.
type Briefing struct {
	Weather *websearch.Result
	Prices  *websearch.Result
	Alerts  *websearch.Result
}

type AdvisorDeps struct {
	Searcher websearch.Searcher
	History  repository.HistoryRepository
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

type advisorService struct {
	searcher websearch.Searcher
	history  repository.HistoryRepository
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewAdvisorService(deps AdvisorDeps) AdvisorService {
	return &advisorService{
		searcher: deps.Searcher,
		history:  deps.History,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}
}

func (s *advisorService) Search(ctx context.Context, req *domain.QueryRequest) (*websearch.Result, error) {
	req.Sanitize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := s.searcher.Search(ctx, req.Text, websearch.TypeGeneral)
	s.finish(ctx, req.UserID, req.Text, websearch.TypeGeneral, result, start)

	return result, nil
}

func (s *advisorService) Weather(ctx context.Context, userID int64, location string, days int) (*websearch.Result, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, domain.ErrEmptyLocation
	}
	if days == 0 {
		days = DefaultForecastDays
	}
	if days < 1 || days > MaxForecastDays {
		return nil, domain.ErrInvalidDays
	}

	start := time.Now()
	result := s.searcher.GetWeatherForecast(ctx, location, days)
	s.finish(ctx, userID, location, websearch.TypeWeather, result, start)

	return result, nil
}

func (s *advisorService) Prices(ctx context.Context, userID int64, commodity, market string) (*websearch.Result, error) {
	commodity = strings.TrimSpace(commodity)
	if commodity == "" {
		return nil, domain.ErrEmptyCommodity
	}
	if market == "" {
		market = DefaultMarket
	}

	start := time.Now()
	result := s.searcher.GetMarketPrices(ctx, commodity, market)
	s.finish(ctx, userID, commodity+" @ "+market, websearch.TypePrices, result, start)

	return result, nil
}

func (s *advisorService) News(ctx context.Context, userID int64, topic, region string) (*websearch.Result, error) {
	if region == "" {
		region = DefaultRegion
	}

	start := time.Now()
	result := s.searcher.GetAgriculturalNews(ctx, topic, region)

	recorded := region
	if topic != "" {
		recorded = region + ": " + topic
	}
	s.finish(ctx, userID, recorded, websearch.TypeNews, result, start)

	return result, nil
}

func (s *advisorService) Alerts(ctx context.Context, userID int64, region string, crops []string) (*websearch.Result, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return nil, domain.ErrEmptyRegion
	}
	if len(crops) == 0 {
		return nil, domain.ErrNoCrops
	}

	start := time.Now()
	result := s.searcher.GetPestDiseaseAlerts(ctx, region, crops)
	s.finish(ctx, userID, region+" ("+strings.Join(crops, ", ")+")", websearch.TypeAlerts, result, start)

	return result, nil
}

func (s *advisorService) History(ctx context.Context, userID int64, limit int) ([]domain.QueryRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.history.ListByUser(ctx, userID, limit)
}

// DailyBriefing fetches weather, prices and pest alerts concurrently. Each
// part is a total Result, so the group never short-circuits: a failed part
// shows up as a failure envelope in the briefing, not as a missing field.
func (s *advisorService) DailyBriefing(ctx context.Context, req BriefingRequest) (*Briefing, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	briefing := &Briefing{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result, err := s.Weather(gctx, req.UserID, req.Location, DefaultForecastDays)
		if err != nil {
			return err
		}
		briefing.Weather = result
		return nil
	})

	g.Go(func() error {
		result, err := s.Prices(gctx, req.UserID, req.Crops[0], DefaultMarket)
		if err != nil {
			return err
		}
		briefing.Prices = result
		return nil
	})

	g.Go(func() error {
		result, err := s.Alerts(gctx, req.UserID, req.Location, req.Crops)
		if err != nil {
			return err
		}
		briefing.Alerts = result
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return briefing, nil
}

func (s *advisorService) Healthy(ctx context.Context) bool {
	healthy := s.searcher.HealthCheck(ctx)
	if s.metrics != nil {
		s.metrics.RecordHealthCheck(healthy)
	}
	return healthy
}

// finish records metrics and history for a completed search. History write
// failures are logged and swallowed: the user already has an answer.
func (s *advisorService) finish(ctx context.Context, userID int64, query string, searchType websearch.SearchType, result *websearch.Result, start time.Time) {
	status := "ok"
	if !result.Success {
		status = "fail"
	}

	if s.metrics != nil {
		s.metrics.RecordSearch(searchType.String(), status, time.Since(start))
	}

	if !result.Success {
		s.logger.Warn("external search failed",
			zap.Int64("user_id", userID),
			zap.String("search_type", searchType.String()),
			zap.String("error", result.Error),
		)
	}

	if s.history == nil {
		return
	}

	rec := &domain.QueryRecord{
		UserID:      userID,
		Query:       query,
		SearchType:  searchType.String(),
		Success:     result.Success,
		SourceCount: len(result.Sources),
	}
	if err := s.history.Create(ctx, rec); err != nil {
		s.logger.Warn("failed to record query history",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
	}
}
