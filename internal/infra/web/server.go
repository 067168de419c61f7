package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/adapter"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/repository"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/api"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/logging"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/usecase"
)

// Deps are the collaborators the HTTP surface needs. Limiter may be nil.
type Deps struct {
	Entitlements usecase.EntitlementUseCase
	Matches      usecase.MatchUseCase
	Predictions  usecase.PredictionUseCase
	Gate         *usecase.ContentGate
	Identity     adapter.IdentityProvider
	Translator   usecase.Translator
	Auth         *AuthManager
	Limiter      repository.RateLimiter

	RedeemLimit    int
	RedeemWindow   time.Duration
	RequestTimeout time.Duration
	Dev            bool
	Now            func() time.Time
}

type Server struct {
	d   Deps
	log *zerolog.Logger
}

func NewServer(d Deps, logger *zerolog.Logger) *Server {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Gate == nil {
		d.Gate = usecase.NewContentGate("")
	}
	l := logger.With().Str("component", "web").Logger()
	return &Server{d: d, log: &l}
}

// Router builds the chi routing tree with the api middlewares in front.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		api.TraceID(),
		api.RequestLog(s.log),
		api.Recover(s.log),
		api.Timeout(s.d.RequestTimeout),
		s.session,
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", s.sessionStart)
		r.Delete("/session", s.sessionEnd)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSubject)
			r.Get("/vip", s.vipStatus)
			r.Post("/vip/redeem", s.vipRedeem)
		})

		r.Get("/matches", s.listMatches)
		r.Get("/matches/{id}/prediction", s.openPrediction)
	})
	return r
}

type ctxKey int

const sessionKey ctxKey = iota

// session attaches the parsed session, if any, to the request context.
// Anonymous requests pass through untouched.
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.d.Auth.ParseFromRequest(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, claims)
		ctx = logging.WithSubjectID(ctx, logging.Redact(claims.Subject, s.d.Dev))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireSubject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionFrom(r.Context()) == nil {
			s.writeError(w, r, http.StatusUnauthorized, "unauthenticated", "error.unauthenticated", false)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFrom(ctx context.Context) *SessionClaims {
	c, _ := ctx.Value(sessionKey).(*SessionClaims)
	return c
}

func subjectFrom(ctx context.Context) string {
	if c := sessionFrom(ctx); c != nil {
		return c.Subject
	}
	return ""
}

// language resolves query "lang" first, then the session claim, then the default.
func language(r *http.Request) model.Language {
	if l, ok := model.ParseLanguage(r.URL.Query().Get("lang")); ok {
		return l
	}
	if c := sessionFrom(r.Context()); c != nil {
		if l, ok := model.ParseLanguage(c.Lang); ok {
			return l
		}
	}
	return model.DefaultLanguage
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, msgKey string, retry bool) {
	body := api.ErrorBody{Error: code, Retry: retry}
	if s.d.Translator != nil && msgKey != "" {
		body.Message = s.d.Translator.T(language(r), msgKey)
	}
	api.WriteJSON(w, status, body)
}
