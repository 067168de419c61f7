//go:build !integration

package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/config"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/logging"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/memory"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/usecase"
)

var testNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

type stubIdentity struct{}

func (stubIdentity) Verify(_ context.Context, tok string) (string, error) {
	if strings.HasPrefix(tok, "ok:") {
		return strings.TrimPrefix(tok, "ok:"), nil
	}
	return "", domain.ErrUnauthenticated
}

type downStore struct{}

func (downStore) Get(context.Context, string) (*model.Entitlement, error) {
	return nil, errors.New("connection refused")
}
func (downStore) Set(context.Context, string, *model.Entitlement) error {
	return errors.New("connection refused")
}

type stubMatches struct{ items []model.ContentItem }

func (s stubMatches) ListByDate(context.Context, time.Time) ([]model.ContentItem, error) {
	return s.items, nil
}

func (s stubMatches) Find(_ context.Context, id string) (*model.ContentItem, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	for _, it := range s.items {
		if it.ID() == id {
			it := it
			return &it, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stubPredictions struct{ calls int }

func (s *stubPredictions) Generate(_ context.Context, m model.Match, lang model.Language) (*model.Prediction, error) {
	s.calls++
	return &model.Prediction{
		MatchID:  m.ID,
		Language: lang,
		Tips:     []model.BetTip{{BetType: "1X2", Recommendation: "1", Probability: 60, Confidence: model.ConfidenceHigh, Odds: 1.8}},
		Analysis: "analysis",
		VIP:      &model.VIPInsight{ExactScores: []string{"2-1"}},
	}, nil
}

type stubTranslator struct{}

func (stubTranslator) T(lang model.Language, key string, _ ...interface{}) string {
	return string(lang) + ":" + key
}

type harness struct {
	srv   http.Handler
	auth  *AuthManager
	store *memory.EntitlementStore
	preds *stubPredictions
}

func newHarness(t *testing.T, mutate func(*Deps)) *harness {
	t.Helper()
	log := logging.Nop()
	store := memory.NewEntitlementStore()
	validator := usecase.NewCodeValidator("ADMIN-1", []string{"BETIQ-AAAA-BBBB"}, func() time.Time { return testNow }, log)
	auth := NewAuthManager(config.AuthConfig{SessionSecret: "s3cret", SessionTTL: time.Hour})
	auth.now = func() time.Time { return testNow }
	preds := &stubPredictions{}

	d := Deps{
		Entitlements: usecase.NewEntitlementUseCase(store, validator, 0, func() time.Time { return testNow }, log, true),
		Matches: stubMatches{items: []model.ContentItem{
			{Match: model.Match{ID: "1", HomeTeam: "Lens", AwayTeam: "Nantes"}, Classification: model.ClassificationStandard},
			{Match: model.Match{ID: "2", HomeTeam: "PSG", AwayTeam: "Lyon"}, Classification: model.ClassificationPremium},
		}},
		Predictions:  preds,
		Gate:         usecase.NewContentGate("/settings/upgrade"),
		Identity:     stubIdentity{},
		Translator:   stubTranslator{},
		Auth:         auth,
		RedeemLimit:  3,
		RedeemWindow: time.Minute,
		Now:          func() time.Time { return testNow },
	}
	if mutate != nil {
		mutate(&d)
	}
	return &harness{srv: NewServer(d, log).Router(), auth: auth, store: store, preds: preds}
}

func (h *harness) do(t *testing.T, method, target, body, subject string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if subject != "" {
		tok, err := h.auth.Mint(httptest.NewRecorder(), subject, "EN")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestSession(t *testing.T) {
	h := newHarness(t, nil)

	t.Run("bad token is 401", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/v1/session", `{"id_token":"nope"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("good token sets the cookie and reports access", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/v1/session", `{"id_token":"ok:fan@example.com","lang":"en"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[sessionResponse](t, rec)
		assert.Equal(t, "fan@example.com", body.Subject)
		assert.Equal(t, "EN", body.Lang)
		assert.False(t, body.Access.CanViewPremium)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "betiq_session", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("sign-out clears the cookie but keeps the entitlement", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/v1/vip/redeem", `{"code":"admin-1"}`, "vip@example.com")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = h.do(t, http.MethodDelete, "/api/v1/session", "", "vip@example.com")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)

		e, err := h.store.Get(context.Background(), "vip@example.com")
		require.NoError(t, err)
		assert.True(t, e.IsActive)
		assert.True(t, e.IsPermanent)
	})
}

func TestVIP(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(t, http.MethodGet, "/api/v1/vip", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthenticated", decode[map[string]any](t, rec)["error"])
	})

	t.Run("redeem time-boxed code", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(t, http.MethodPost, "/api/v1/vip/redeem", `{"code":" betiq-aaaa-bbbb "}`, "fan@example.com")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[redeemResponse](t, rec)
		assert.Equal(t, string(model.OutcomeGrantTimeBoxed), body.Outcome)
		assert.True(t, body.Access.CanViewPremium)
		assert.False(t, body.Access.IsPermanent)
		require.NotNil(t, body.Access.ExpiresAt)
		assert.True(t, body.Access.ExpiresAt.Equal(testNow.Add(model.VIPWindow)))
		assert.Equal(t, "EN:vip.redeem.grant_time_boxed", body.Message)

		rec = h.do(t, http.MethodGet, "/api/v1/vip", "", "fan@example.com")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[accessDTO](t, rec).CanViewPremium)
	})

	t.Run("no match is not an error", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(t, http.MethodPost, "/api/v1/vip/redeem", `{"code":"WRONG"}`, "fan@example.com")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[redeemResponse](t, rec)
		assert.Equal(t, "no_match", body.Outcome)
		assert.False(t, body.Access.CanViewPremium)
	})

	t.Run("rate limited", func(t *testing.T) {
		h := newHarness(t, func(d *Deps) { d.Limiter = memory.NewRateLimiter() })
		for i := 0; i < 3; i++ {
			rec := h.do(t, http.MethodPost, "/api/v1/vip/redeem", `{"code":"WRONG"}`, "fan@example.com")
			require.Equal(t, http.StatusOK, rec.Code)
		}
		rec := h.do(t, http.MethodPost, "/api/v1/vip/redeem", `{"code":"ADMIN-1"}`, "fan@example.com")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)

		other := h.do(t, http.MethodPost, "/api/v1/vip/redeem", `{"code":"WRONG"}`, "other@example.com")
		assert.Equal(t, http.StatusOK, other.Code)
	})

	t.Run("store failure is a retryable 503", func(t *testing.T) {
		h := newHarness(t, func(d *Deps) {
			v := usecase.NewCodeValidator("ADMIN-1", nil, time.Now, logging.Nop())
			d.Entitlements = usecase.NewEntitlementUseCase(downStore{}, v, 0, nil, logging.Nop(), false)
		})
		rec := h.do(t, http.MethodGet, "/api/v1/vip", "", "fan@example.com")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decode[map[string]any](t, rec)
		assert.Equal(t, "entitlement_check_failed", body["error"])
		assert.Equal(t, true, body["retry"])
	})
}

func TestMatches(t *testing.T) {
	t.Run("anonymous sees premium locked", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(t, http.MethodGet, "/api/v1/matches?date=2025-05-10", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[matchesResponse](t, rec)
		require.Len(t, body.Matches, 2)
		assert.Equal(t, "FR", body.Lang)

		std, prem := body.Matches[0], body.Matches[1]
		assert.Equal(t, string(model.ViewFullyVisible), std.View)
		assert.Equal(t, "/api/v1/matches/1/prediction?lang=fr", std.PredictionURL)
		assert.Equal(t, string(model.ViewLockedPlaceholder), prem.View)
		assert.Empty(t, prem.PredictionURL)
		assert.Equal(t, "FR:gate.locked", prem.LockedMessage)
	})

	t.Run("entitled subject sees everything in the session language", func(t *testing.T) {
		h := newHarness(t, nil)
		h.do(t, http.MethodPost, "/api/v1/vip/redeem", `{"code":"ADMIN-1"}`, "vip@example.com")
		rec := h.do(t, http.MethodGet, "/api/v1/matches", "", "vip@example.com")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[matchesResponse](t, rec)
		assert.Equal(t, "EN", body.Lang)
		assert.Equal(t, "2025-05-10", body.Date)
		for _, m := range body.Matches {
			assert.Equal(t, string(model.ViewFullyVisible), m.View)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(t, http.MethodGet, "/api/v1/matches?date=10/05/2025", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestOpenPrediction(t *testing.T) {
	t.Run("locked item redirects without generating", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(t, http.MethodGet, "/api/v1/matches/2/prediction", "", "fan@example.com")
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/settings/upgrade", rec.Header().Get("Location"))
		assert.Equal(t, "/settings/upgrade", decode[redirectResponse](t, rec).Redirect)
		assert.Zero(t, h.preds.calls)
	})

	t.Run("standard item is redacted for non-VIP", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(t, http.MethodGet, "/api/v1/matches/1/prediction?lang=en", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		p := decode[model.Prediction](t, rec)
		assert.Nil(t, p.VIP)
		assert.Equal(t, model.LanguageEN, p.Language)
	})

	t.Run("VIP gets the insight on premium items", func(t *testing.T) {
		h := newHarness(t, nil)
		h.do(t, http.MethodPost, "/api/v1/vip/redeem", `{"code":"ADMIN-1"}`, "vip@example.com")
		rec := h.do(t, http.MethodGet, "/api/v1/matches/2/prediction?lang=fr", "", "vip@example.com")
		require.Equal(t, http.StatusOK, rec.Code)
		p := decode[model.Prediction](t, rec)
		require.NotNil(t, p.VIP)
		assert.Equal(t, model.LanguageFR, p.Language)
	})

	t.Run("unknown match", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(t, http.MethodGet, "/api/v1/matches/99/prediction", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("store failure on open", func(t *testing.T) {
		h := newHarness(t, func(d *Deps) {
			v := usecase.NewCodeValidator("ADMIN-1", nil, time.Now, logging.Nop())
			d.Entitlements = usecase.NewEntitlementUseCase(downStore{}, v, 0, nil, logging.Nop(), false)
		})
		rec := h.do(t, http.MethodGet, "/api/v1/matches/2/prediction", "", "fan@example.com")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Zero(t, h.preds.calls)
	})
}

func TestAuthManager_RejectsTampering(t *testing.T) {
	a := NewAuthManager(config.AuthConfig{SessionSecret: "one", SessionTTL: time.Hour})
	b := NewAuthManager(config.AuthConfig{SessionSecret: "two", SessionTTL: time.Hour})
	tok, err := a.Mint(httptest.NewRecorder(), "fan@example.com", "FR")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "betiq_session", Value: tok})
	claims, err := a.ParseFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "fan@example.com", claims.Subject)
	assert.Equal(t, "FR", claims.Lang)

	_, err = b.ParseFromRequest(req)
	assert.Error(t, err)

	_, err = a.ParseFromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, errMissingSession)
}
