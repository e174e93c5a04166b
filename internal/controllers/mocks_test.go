package controllers

import (
	"context"
	"sync"
	"time"
	"varietyd/internal/models"
	"varietyd/internal/providers"
	"varietyd/internal/services"
)

// --- local mocks (scoped to controller tests) ---

type mockLogger struct{}

func (m *mockLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Close()                                                  {}

type mockCoordinator struct {
	mu           sync.Mutex
	current      models.YearResult
	currentErr   error
	years        map[int]models.YearResult
	yearErr      error
	known        []int
	stats        services.CoordinatorStats
	currentCalls int
	yearCalls    []int
}

func (m *mockCoordinator) GetCurrentYear(_ context.Context) (models.YearResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentCalls++
	return m.current, m.currentErr
}

func (m *mockCoordinator) GetYear(_ context.Context, year int) (models.YearResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.yearCalls = append(m.yearCalls, year)
	if m.yearErr != nil {
		return models.YearResult{}, m.yearErr
	}
	if res, ok := m.years[year]; ok {
		return res, nil
	}
	return models.YearResult{}, models.ErrUntrackedYear
}

func (m *mockCoordinator) KnownYears() []int                { return m.known }
func (m *mockCoordinator) Stats() services.CoordinatorStats { return m.stats }
func (m *mockCoordinator) Start()                           {}
func (m *mockCoordinator) Stop()                            {}

type mockCache struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *mockCache) Get(key string) ([]byte, bool) { v, ok := m.data[key]; return v, ok }
func (m *mockCache) Set(key string, value []byte, ttl time.Duration) {
	m.data[key] = value
	m.ttls[key] = ttl
}
