//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/adapter"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/repository"
)

var errBackend = errors.New("backend down")

// -----------------------------
// Clock
// -----------------------------

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// =============================
// Repositories
// =============================

// ---- Mock EntitlementStore ----

type MockEntitlementStore struct {
	mu   sync.Mutex
	data map[string]model.Entitlement
	sets int

	GetErr error
	SetErr error
}

var _ repository.EntitlementStore = (*MockEntitlementStore)(nil)

func NewMockEntitlementStore() *MockEntitlementStore {
	return &MockEntitlementStore{data: make(map[string]model.Entitlement)}
}

func (m *MockEntitlementStore) Get(ctx context.Context, subjectID string) (*model.Entitlement, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[subjectID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (m *MockEntitlementStore) Set(ctx context.Context, subjectID string, e *model.Entitlement) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[subjectID] = *e
	m.sets++
	return nil
}

func (m *MockEntitlementStore) put(e model.Entitlement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[e.SubjectID] = e
}

func (m *MockEntitlementStore) raw(subjectID string) (model.Entitlement, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[subjectID]
	return e, ok
}

func (m *MockEntitlementStore) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

// ---- Mock PredictionCache ----

type MockPredictionCache struct {
	mu   sync.Mutex
	data map[string]model.Prediction
	puts int
}

var _ repository.PredictionCache = (*MockPredictionCache)(nil)

func NewMockPredictionCache() *MockPredictionCache {
	return &MockPredictionCache{data: make(map[string]model.Prediction)}
}

func (m *MockPredictionCache) key(matchID string, lang model.Language) string {
	return fmt.Sprintf("%s:%s", matchID, lang)
}

func (m *MockPredictionCache) Get(ctx context.Context, matchID string, lang model.Language) (*model.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[m.key(matchID, lang)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *MockPredictionCache) Put(ctx context.Context, p *model.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[m.key(p.MatchID, p.Language)] = *p
	m.puts++
	return nil
}

func (m *MockPredictionCache) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// ---- Mock Locker ----

type MockLocker struct {
	mu       sync.Mutex
	held     map[string]string
	unlocked int
}

var _ repository.Locker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker { return &MockLocker{held: make(map[string]string)} }

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[key]; ok {
		return "", domain.ErrLockHeld
	}
	tok := fmt.Sprintf("tok-%d", len(m.held)+1)
	m.held[key] = tok
	return tok, nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] == token {
		delete(m.held, key)
		m.unlocked++
	}
	return nil
}

// =============================
// Adapters
// =============================

// ---- Mock AIServiceAdapter ----

type MockAI struct {
	mu    sync.Mutex
	calls int

	ChatFunc func(ctx context.Context, model string, messages []adapter.Message) (string, error)
}

var _ adapter.AIServiceAdapter = (*MockAI)(nil)

func (m *MockAI) Provider() string { return "mock" }

func (m *MockAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"mock-model"}, nil
}

func (m *MockAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, model, messages)
	}
	return validReply, nil
}

func (m *MockAI) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	s, err := m.Chat(ctx, model, messages)
	return s, adapter.Usage{}, err
}

func (m *MockAI) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

const validReply = `{"predictions":[{"bet_type":"1X2","recommendation":"Home win","probability":62,"confidence":"high","odds":1.85},` +
	`{"bet_type":"Goals","recommendation":"Over 2.5","probability":55,"confidence":"MEDIUM","odds":1.9}],` +
	`"analysis":"Home side presses high.","vip_insight":{"exact_scores":["2-1","1-0"]}}`

// ---- Mock MatchSource ----

type MockMatchSource struct {
	ListFunc func(ctx context.Context, day time.Time) ([]model.Match, error)
	FindFunc func(ctx context.Context, id string) (*model.Match, error)
}

var _ adapter.MatchSource = (*MockMatchSource)(nil)

func (m *MockMatchSource) ListByDate(ctx context.Context, day time.Time) ([]model.Match, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, day)
	}
	return nil, nil
}

func (m *MockMatchSource) FindByID(ctx context.Context, id string) (*model.Match, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

// ---- Mock Translator ----

type MockTranslator struct{}

func (MockTranslator) T(lang model.Language, key string, args ...interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf("%s:%s:%v", lang, key, args)
	}
	return fmt.Sprintf("%s:%s", lang, key)
}

// -----------------------------
// Logger
// -----------------------------

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
