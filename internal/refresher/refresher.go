// Package refresher keeps stored health scores inside their validity window.
// It recomputes expired scores on a ticker and prunes data past retention.
package refresher

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/airlens/airlens/internal/airwave"
	"github.com/airlens/airlens/internal/alert"
	"github.com/airlens/airlens/internal/config"
	"github.com/airlens/airlens/internal/health"
	"github.com/airlens/airlens/internal/observability"
	"github.com/airlens/airlens/internal/provider"
	"github.com/airlens/airlens/internal/store"
)

// ErrNoProfile means the user has no stored profile to score against.
var ErrNoProfile = errors.New("refresher: user has no profile")

// ErrNoReading means no current reading could be found or fetched.
var ErrNoReading = errors.New("refresher: no air quality reading available")

// readingMaxAge is how old a stored reading may be before the refresher
// falls back to the external provider.
const readingMaxAge = time.Hour

type Refresher struct {
	store    store.Store
	bus      airwave.Client
	provider provider.Client
	engine   *health.Engine
	notifier *alert.Notifier
	cfg      *config.Config
	logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(s store.Store, bus airwave.Client, p provider.Client, cfg *config.Config, logger *slog.Logger) (*Refresher, error) {
	engine, err := health.NewEngine(cfg.Scoring.Weights, health.WithTTL(cfg.ResultTTL()))
	if err != nil {
		return nil, err
	}
	return &Refresher{
		store:    s,
		bus:      bus,
		provider: p,
		engine:   engine,
		notifier: alert.NewNotifier(bus, logger),
		cfg:      cfg,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

func (r *Refresher) Start(ctx context.Context) {
	r.wg.Add(2)
	go r.refreshLoop(ctx)
	go r.cleanupLoop(ctx)
}

func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

// ComputeScore runs a full score computation for one user: load profiles,
// find or fetch a current reading, score, persist, raise alerts, publish.
// The API's on-demand score endpoint and the background refresh loop both
// come through here. lat/lon are the fallback coordinates for the provider
// fetch; zeros skip the fallback.
func (r *Refresher) ComputeScore(ctx context.Context, userID string, lat, lon float64) (*health.ScoreResult, error) {
	started := time.Now()

	user, err := r.store.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNoProfile
	}
	profile, err := r.store.GetHealthProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	current, err := r.currentReading(ctx, userID, lat, lon)
	if err != nil {
		return nil, err
	}

	history, err := r.store.ReadingsSince(ctx, userID, time.Now().Add(-7*24*time.Hour))
	if err != nil {
		r.logger.Warn("failed to load reading history", "user_id", userID, "error", err)
		history = nil
	}

	prev, err := r.store.LatestScoreResult(ctx, userID)
	if err != nil {
		r.logger.Warn("failed to load previous score", "user_id", userID, "error", err)
	}

	result, err := r.engine.Compute(userID, user, profile, current, history)
	if err != nil {
		return nil, err
	}

	if err := r.store.CreateScoreResult(ctx, result); err != nil {
		return nil, err
	}

	r.notifier.Evaluate(userID, prev, result, current.AQI)
	observability.RecordScoreComputed(string(result.RiskCategory), time.Since(started))

	if r.bus != nil {
		if err := r.bus.Publish(airwave.SubjectScoreComputed(userID), airwave.ScoreComputedEvent{
			ScoreID:      result.ID.String(),
			UserID:       userID,
			Overall:      result.Overall,
			RiskLevel:    result.RiskLevel,
			RiskCategory: result.RiskCategory,
			ExpiresAt:    result.ExpiresAt,
		}); err != nil {
			r.logger.Warn("failed to publish score event", "user_id", userID, "error", err)
		}
	}

	return result, nil
}

// currentReading prefers a recent stored reading and falls back to the
// external provider, persisting whatever it fetched so it joins the user's
// history.
func (r *Refresher) currentReading(ctx context.Context, userID string, lat, lon float64) (*health.AirQualityReading, error) {
	latest, err := r.store.LatestReading(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest != nil && time.Since(latest.ReadingTime) <= readingMaxAge {
		return latest, nil
	}

	if r.provider != nil && (lat != 0 || lon != 0) {
		fetched, err := r.provider.CurrentConditions(ctx, lat, lon)
		if err == nil && fetched != nil {
			fetched.UserID = userID
			if err := r.store.CreateReading(ctx, fetched); err != nil {
				r.logger.Warn("failed to persist provider reading", "user_id", userID, "error", err)
			}
			return fetched, nil
		}
		if err != nil {
			r.logger.Warn("provider fetch failed", "user_id", userID, "error", err)
		}
	}

	// A stale stored reading still beats nothing.
	if latest != nil {
		return latest, nil
	}
	return nil, ErrNoReading
}

// SetupSubscriptions registers event bus subscriptions for bookkeeping and
// on-demand scoring.
func (r *Refresher) SetupSubscriptions() {
	if r.bus == nil {
		return
	}

	_ = r.bus.Subscribe(airwave.SubjectReadingRequest, func(_ string, data []byte) {
		var req airwave.ReadingRequestEvent
		if err := json.Unmarshal(data, &req); err != nil {
			r.logger.Warn("invalid reading request event", "error", err)
			return
		}
		if req.UserID == "" {
			r.logger.Warn("reading request without user_id")
			return
		}
		if _, err := r.ComputeScore(context.Background(), req.UserID, req.Latitude, req.Longitude); err != nil {
			r.logger.Debug("on-demand score failed", "user_id", req.UserID, "error", err)
		}
	})

	_ = r.bus.Subscribe(airwave.SubjectSensorOnline, func(subject string, _ []byte) {
		r.logger.Info("sensor online", "subject", subject)
	})
	_ = r.bus.Subscribe(airwave.SubjectSensorOffline, func(subject string, _ []byte) {
		r.logger.Warn("sensor offline", "subject", subject)
	})
}

func (r *Refresher) refreshLoop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refreshStale(ctx)
		}
	}
}

func (r *Refresher) refreshStale(ctx context.Context) {
	stale, err := r.store.ListStaleScores(ctx, time.Now(), r.cfg.Refresher.RefreshBatchSize)
	if err != nil {
		r.logger.Error("failed to list stale scores", "error", err)
		return
	}

	refreshed := 0
	for _, s := range stale {
		result, err := r.ComputeScore(ctx, s.UserID, s.Latitude, s.Longitude)
		if err != nil {
			if errors.Is(err, ErrNoProfile) || errors.Is(err, ErrNoReading) {
				r.logger.Debug("skipping stale score", "user_id", s.UserID, "reason", err)
				if r.bus != nil {
					_ = r.bus.Publish(airwave.SubjectScoreExpired(s.UserID), map[string]interface{}{
						"user_id":    s.UserID,
						"expired_at": s.ExpiresAt,
					})
				}
				continue
			}
			r.logger.Error("failed to refresh score", "user_id", s.UserID, "error", err)
			continue
		}
		refreshed++

		if r.bus != nil {
			if err := r.bus.Publish(airwave.SubjectScoreRefreshed(s.UserID), airwave.ScoreComputedEvent{
				ScoreID:      result.ID.String(),
				UserID:       s.UserID,
				Overall:      result.Overall,
				RiskLevel:    result.RiskLevel,
				RiskCategory: result.RiskCategory,
				Refreshed:    true,
				ExpiresAt:    result.ExpiresAt,
			}); err != nil {
				r.logger.Warn("failed to publish refresh event", "user_id", s.UserID, "error", err)
			}
		}
	}

	observability.RecordRefreshPass(refreshed, time.Now())
	if len(stale) > 0 {
		r.logger.Info("refresh pass complete", "stale", len(stale), "refreshed", refreshed)
	}
}

func (r *Refresher) cleanupLoop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.CleanupInterval())
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cleanup(ctx)
		}
	}
}

func (r *Refresher) cleanup(ctx context.Context) {
	now := time.Now()

	deleted, err := r.store.DeleteReadingsBefore(ctx, now.Add(-r.cfg.ReadingRetention()))
	if err != nil {
		r.logger.Error("failed to prune readings", "error", err)
	} else if deleted > 0 {
		r.logger.Info("pruned old readings", "deleted", deleted)
	}

	deleted, err = r.store.DeleteScoresBefore(ctx, now.Add(-r.cfg.ScoreRetention()))
	if err != nil {
		r.logger.Error("failed to prune scores", "error", err)
	} else if deleted > 0 {
		r.logger.Info("pruned old scores", "deleted", deleted)
	}

	r.publishStats(ctx, now)
}

func (r *Refresher) publishStats(ctx context.Context, now time.Time) {
	if r.bus == nil {
		return
	}
	stats, err := r.store.GetStats(ctx)
	if err != nil {
		r.logger.Error("failed to collect stats", "error", err)
		return
	}
	_ = r.bus.Publish(airwave.SubjectEngineStats, airwave.StatsEvent{
		TotalReadings:   stats.TotalReadings,
		TotalScores:     stats.TotalScores,
		StaleScores:     stats.StaleScores,
		AvgOverallScore: stats.AvgOverallScore,
		Timestamp:       now,
	})
}
