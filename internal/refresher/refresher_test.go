package refresher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/airlens/airlens/internal/config"
	"github.com/airlens/airlens/internal/health"
	"github.com/airlens/airlens/internal/provider"
	"github.com/airlens/airlens/internal/store"
)

// Mock implementations

type mockStore struct {
	readings       []*health.AirQualityReading
	userProfiles   map[string]*health.UserProfile
	healthProfiles map[string]*health.HealthProfile
	scores         []*health.ScoreResult
}

func newMockStore() *mockStore {
	return &mockStore{
		userProfiles:   make(map[string]*health.UserProfile),
		healthProfiles: make(map[string]*health.HealthProfile),
	}
}

func (m *mockStore) CreateReading(_ context.Context, r *health.AirQualityReading) error {
	r.ID = uuid.New()
	m.readings = append(m.readings, r)
	return nil
}
func (m *mockStore) GetReading(_ context.Context, id uuid.UUID) (*health.AirQualityReading, error) {
	for _, r := range m.readings {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}
func (m *mockStore) ListReadings(_ context.Context, _ store.ReadingFilter) ([]*health.AirQualityReading, error) {
	return m.readings, nil
}
func (m *mockStore) LatestReading(_ context.Context, userID string) (*health.AirQualityReading, error) {
	var latest *health.AirQualityReading
	for _, r := range m.readings {
		if r.UserID != userID {
			continue
		}
		if latest == nil || r.ReadingTime.After(latest.ReadingTime) {
			latest = r
		}
	}
	return latest, nil
}
func (m *mockStore) ReadingsSince(_ context.Context, userID string, since time.Time) ([]health.AirQualityReading, error) {
	var out []health.AirQualityReading
	for _, r := range m.readings {
		if r.UserID == userID && !r.ReadingTime.Before(since) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReadingTime.Before(out[j].ReadingTime) })
	return out, nil
}
func (m *mockStore) UpsertUserProfile(_ context.Context, p *health.UserProfile) error {
	m.userProfiles[p.UserID] = p
	return nil
}
func (m *mockStore) GetUserProfile(_ context.Context, userID string) (*health.UserProfile, error) {
	return m.userProfiles[userID], nil
}
func (m *mockStore) UpsertHealthProfile(_ context.Context, p *health.HealthProfile) error {
	m.healthProfiles[p.UserID] = p
	return nil
}
func (m *mockStore) GetHealthProfile(_ context.Context, userID string) (*health.HealthProfile, error) {
	return m.healthProfiles[userID], nil
}
func (m *mockStore) CreateScoreResult(_ context.Context, r *health.ScoreResult) error {
	m.scores = append(m.scores, r)
	return nil
}
func (m *mockStore) GetScoreResult(_ context.Context, id uuid.UUID) (*health.ScoreResult, error) {
	for _, s := range m.scores {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}
func (m *mockStore) LatestScoreResult(_ context.Context, userID string) (*health.ScoreResult, error) {
	var latest *health.ScoreResult
	for _, s := range m.scores {
		if s.UserID != userID {
			continue
		}
		if latest == nil || s.ComputedAt.After(latest.ComputedAt) {
			latest = s
		}
	}
	return latest, nil
}
func (m *mockStore) ListStaleScores(_ context.Context, asOf time.Time, _ int) ([]store.StaleScore, error) {
	seen := map[string]*health.ScoreResult{}
	for _, s := range m.scores {
		if cur, ok := seen[s.UserID]; !ok || s.ComputedAt.After(cur.ComputedAt) {
			seen[s.UserID] = s
		}
	}
	var out []store.StaleScore
	for userID, s := range seen {
		if !s.ExpiresAt.After(asOf) {
			out = append(out, store.StaleScore{UserID: userID, ExpiresAt: s.ExpiresAt})
		}
	}
	return out, nil
}
func (m *mockStore) GetStats(_ context.Context) (*store.SystemStats, error) {
	return &store.SystemStats{TotalReadings: len(m.readings), TotalScores: len(m.scores)}, nil
}
func (m *mockStore) DeleteReadingsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []*health.AirQualityReading
	var deleted int64
	for _, r := range m.readings {
		if r.ReadingTime.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.readings = kept
	return deleted, nil
}
func (m *mockStore) DeleteScoresBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []*health.ScoreResult
	var deleted int64
	for _, s := range m.scores {
		if s.ExpiresAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	m.scores = kept
	return deleted, nil
}
func (m *mockStore) Close() error { return nil }

type mockBus struct {
	subjects []string
}

func (m *mockBus) Publish(subject string, _ interface{}) error {
	m.subjects = append(m.subjects, subject)
	return nil
}
func (m *mockBus) Subscribe(string, func(string, []byte)) error { return nil }
func (m *mockBus) Close()                                       {}

type mockProvider struct {
	reading *health.AirQualityReading
	err     error
	calls   int
}

func (m *mockProvider) CurrentConditions(_ context.Context, lat, lon float64) (*health.AirQualityReading, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	r := *m.reading
	r.Latitude, r.Longitude = lat, lon
	return &r, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg, _ := config.Load("")
	return cfg
}

func newTestRefresher(t *testing.T, s store.Store, bus *mockBus, p *mockProvider) *Refresher {
	t.Helper()
	var prov provider.Client
	if p != nil {
		prov = p
	}
	r, err := New(s, bus, prov, testConfig(), testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestComputeScoreWithStoredReading(t *testing.T) {
	ms := newMockStore()
	bus := &mockBus{}
	ms.userProfiles["u1"] = &health.UserProfile{UserID: "u1", Age: 35, ActivityLevel: health.ActivityModerate}
	ms.readings = append(ms.readings, &health.AirQualityReading{
		ID: uuid.New(), UserID: "u1", AQI: 60, PM25: 18, ReadingTime: time.Now().Add(-10 * time.Minute),
	})

	r := newTestRefresher(t, ms, bus, nil)
	result, err := r.ComputeScore(context.Background(), "u1", 0, 0)
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	if result.Overall <= 0 || result.Overall > 100 {
		t.Errorf("overall = %d out of range", result.Overall)
	}
	if len(ms.scores) != 1 {
		t.Fatalf("expected persisted score, got %d", len(ms.scores))
	}
	found := false
	for _, subj := range bus.subjects {
		if subj == "airlens.score.u1.computed" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected score computed event, got %v", bus.subjects)
	}
}

func TestComputeScoreNoProfile(t *testing.T) {
	r := newTestRefresher(t, newMockStore(), &mockBus{}, nil)
	if _, err := r.ComputeScore(context.Background(), "ghost", 0, 0); !errors.Is(err, ErrNoProfile) {
		t.Errorf("err = %v, want ErrNoProfile", err)
	}
}

func TestComputeScoreNoReading(t *testing.T) {
	ms := newMockStore()
	ms.userProfiles["u2"] = &health.UserProfile{UserID: "u2", Age: 40}

	r := newTestRefresher(t, ms, &mockBus{}, nil)
	if _, err := r.ComputeScore(context.Background(), "u2", 0, 0); !errors.Is(err, ErrNoReading) {
		t.Errorf("err = %v, want ErrNoReading", err)
	}
}

func TestComputeScoreFallsBackToProvider(t *testing.T) {
	ms := newMockStore()
	ms.userProfiles["u3"] = &health.UserProfile{UserID: "u3", Age: 28, ActivityLevel: health.ActivityActive}
	// Stored reading too old to use directly.
	ms.readings = append(ms.readings, &health.AirQualityReading{
		ID: uuid.New(), UserID: "u3", AQI: 200, ReadingTime: time.Now().Add(-3 * time.Hour),
	})
	p := &mockProvider{reading: &health.AirQualityReading{
		AQI: 45, PM25: 9, Source: "provider", ReadingTime: time.Now(),
	}}

	r := newTestRefresher(t, ms, &mockBus{}, p)
	result, err := r.ComputeScore(context.Background(), "u3", 52.52, 13.405)
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	if p.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", p.calls)
	}
	// Fresh provider reading (AQI 45) should score well.
	if result.Overall < 80 {
		t.Errorf("overall = %d, expected a high score from clean provider data", result.Overall)
	}
	// Provider reading must be persisted under the user.
	if len(ms.readings) != 2 {
		t.Fatalf("expected fetched reading persisted, have %d readings", len(ms.readings))
	}
	if ms.readings[1].UserID != "u3" {
		t.Errorf("persisted reading user = %q", ms.readings[1].UserID)
	}
}

func TestComputeScoreUsesStaleReadingWhenProviderFails(t *testing.T) {
	ms := newMockStore()
	ms.userProfiles["u4"] = &health.UserProfile{UserID: "u4", Age: 50}
	ms.readings = append(ms.readings, &health.AirQualityReading{
		ID: uuid.New(), UserID: "u4", AQI: 110, PM25: 40, ReadingTime: time.Now().Add(-5 * time.Hour),
	})
	p := &mockProvider{err: errors.New("provider down")}

	r := newTestRefresher(t, ms, &mockBus{}, p)
	result, err := r.ComputeScore(context.Background(), "u4", 1, 1)
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result from the stale reading")
	}
}

func TestRefreshStaleRecomputesExpired(t *testing.T) {
	ms := newMockStore()
	bus := &mockBus{}
	now := time.Now()

	ms.userProfiles["u5"] = &health.UserProfile{UserID: "u5", Age: 33, ActivityLevel: health.ActivityLight}
	ms.readings = append(ms.readings, &health.AirQualityReading{
		ID: uuid.New(), UserID: "u5", AQI: 70, PM25: 20, ReadingTime: now.Add(-5 * time.Minute),
	})
	ms.scores = append(ms.scores, &health.ScoreResult{
		ID: uuid.New(), UserID: "u5", Overall: 75,
		RiskCategory: health.RiskLow,
		ComputedAt:   now.Add(-3 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	})

	r := newTestRefresher(t, ms, bus, nil)
	r.refreshStale(context.Background())

	if len(ms.scores) != 2 {
		t.Fatalf("expected a recomputed score, have %d", len(ms.scores))
	}
	found := false
	for _, subj := range bus.subjects {
		if subj == "airlens.score.u5.refreshed" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected refresh event, got %v", bus.subjects)
	}
}

func TestRefreshStaleSkipsUsersWithoutProfile(t *testing.T) {
	ms := newMockStore()
	now := time.Now()
	ms.scores = append(ms.scores, &health.ScoreResult{
		ID: uuid.New(), UserID: "orphan", Overall: 50,
		ComputedAt: now.Add(-3 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	})

	r := newTestRefresher(t, ms, &mockBus{}, nil)
	r.refreshStale(context.Background())

	if len(ms.scores) != 1 {
		t.Errorf("expected no new scores for orphaned user, have %d", len(ms.scores))
	}
}

func TestCleanupPrunesOldData(t *testing.T) {
	ms := newMockStore()
	now := time.Now()
	ms.readings = append(ms.readings,
		&health.AirQualityReading{ID: uuid.New(), UserID: "u6", ReadingTime: now.Add(-120 * 24 * time.Hour)},
		&health.AirQualityReading{ID: uuid.New(), UserID: "u6", ReadingTime: now},
	)
	ms.scores = append(ms.scores,
		&health.ScoreResult{ID: uuid.New(), UserID: "u6", ExpiresAt: now.Add(-60 * 24 * time.Hour)},
		&health.ScoreResult{ID: uuid.New(), UserID: "u6", ExpiresAt: now},
	)

	r := newTestRefresher(t, ms, &mockBus{}, nil)
	r.cleanup(context.Background())

	if len(ms.readings) != 1 {
		t.Errorf("expected 1 reading after cleanup, have %d", len(ms.readings))
	}
	if len(ms.scores) != 1 {
		t.Errorf("expected 1 score after cleanup, have %d", len(ms.scores))
	}
}

func TestStartStop(t *testing.T) {
	r := newTestRefresher(t, newMockStore(), &mockBus{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.Start(ctx)
	r.Stop()
	// Stop is idempotent.
	r.Stop()
}
