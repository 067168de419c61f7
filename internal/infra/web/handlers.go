package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/repository"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/api"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/logging"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/metrics"
)

type accessDTO struct {
	CanViewPremium bool       `json:"can_view_premium"`
	IsPermanent    bool       `json:"is_permanent"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

func toAccessDTO(a model.EffectiveAccess) accessDTO {
	return accessDTO{CanViewPremium: a.CanViewPremium, IsPermanent: a.IsPermanent, ExpiresAt: a.ExpiresAt}
}

type sessionRequest struct {
	IDToken string `json:"id_token"`
	Lang    string `json:"lang"`
}

type sessionResponse struct {
	Subject string    `json:"subject"`
	Lang    string    `json:"lang"`
	Access  accessDTO `json:"access"`
}

type redeemRequest struct {
	Code string `json:"code"`
}

type redeemResponse struct {
	Outcome string    `json:"outcome"`
	Message string    `json:"message,omitempty"`
	Access  accessDTO `json:"access"`
}

type matchDTO struct {
	ID             string    `json:"id"`
	HomeTeam       string    `json:"home_team"`
	AwayTeam       string    `json:"away_team"`
	League         string    `json:"league"`
	Country        string    `json:"country,omitempty"`
	KickoffAt      time.Time `json:"kickoff_at"`
	Status         string    `json:"status,omitempty"`
	HomeLogo       string    `json:"home_logo,omitempty"`
	AwayLogo       string    `json:"away_logo,omitempty"`
	Classification string    `json:"classification"`
	View           string    `json:"view"`
	PredictionURL  string    `json:"prediction_url,omitempty"`
	LockedMessage  string    `json:"locked_message,omitempty"`
}

type matchesResponse struct {
	Date    string     `json:"date"`
	Lang    string     `json:"lang"`
	Access  accessDTO  `json:"access"`
	Matches []matchDTO `json:"matches"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

// sessionStart exchanges a provider ID token for a session cookie and
// reports the subject's current access.
func (s *Server) sessionStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid_body", "", false)
		return
	}

	subject, err := s.d.Identity.Verify(ctx, req.IDToken)
	if err != nil {
		s.writeError(w, r, http.StatusUnauthorized, "unauthenticated", "error.unauthenticated", false)
		return
	}
	lang, ok := model.ParseLanguage(req.Lang)
	if !ok {
		lang = model.DefaultLanguage
	}
	if _, err := s.d.Auth.Mint(w, subject, string(lang)); err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("mint session")
		s.writeError(w, r, http.StatusInternalServerError, "internal_error", "", false)
		return
	}

	access, err := s.d.Entitlements.DeriveCurrentAccess(ctx, subject)
	if err != nil {
		s.entitlementError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, sessionResponse{
		Subject: subject,
		Lang:    string(lang),
		Access:  toAccessDTO(access),
	})
}

// sessionEnd only drops the cookie; the stored entitlement is untouched.
func (s *Server) sessionEnd(w http.ResponseWriter, r *http.Request) {
	s.d.Auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) vipStatus(w http.ResponseWriter, r *http.Request) {
	access, err := s.d.Entitlements.DeriveCurrentAccess(r.Context(), subjectFrom(r.Context()))
	if err != nil {
		s.entitlementError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, toAccessDTO(access))
}

func (s *Server) vipRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject := subjectFrom(ctx)

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid_body", "", false)
		return
	}

	if s.d.Limiter != nil && s.d.RedeemLimit > 0 {
		ok, err := s.d.Limiter.Allow(ctx, repository.RedeemKey(subject), s.d.RedeemLimit, s.d.RedeemWindow)
		switch {
		case err != nil:
			// fail open: a limiter outage must not block legitimate redemptions
			logging.With(ctx, s.log).Warn().Err(err).Msg("redeem rate limiter unavailable")
		case !ok:
			metrics.IncRedeemAttempt("rate_limited")
			s.writeError(w, r, http.StatusTooManyRequests, "rate_limited", "vip.rate_limited", true)
			return
		}
	}

	outcome, access, err := s.d.Entitlements.Redeem(ctx, subject, req.Code)
	if err != nil {
		s.entitlementError(w, r, err)
		return
	}

	resp := redeemResponse{Outcome: string(outcome.Kind), Access: toAccessDTO(access)}
	if s.d.Translator != nil {
		resp.Message = s.d.Translator.T(language(r), "vip.redeem."+string(outcome.Kind))
	}
	api.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := language(r)

	day := s.d.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, "invalid_date", "", false)
			return
		}
		day = d
	}

	access, ok := s.currentAccess(w, r)
	if !ok {
		return
	}

	items, err := s.d.Matches.ListByDate(ctx, day)
	if err != nil {
		s.writeError(w, r, http.StatusGatewayTimeout, "timeout", "", true)
		return
	}

	locked := ""
	if s.d.Translator != nil {
		locked = s.d.Translator.T(lang, "gate.locked")
	}
	out := lo.Map(items, func(it model.ContentItem, _ int) matchDTO {
		m := it.Match
		dto := matchDTO{
			ID:             m.ID,
			HomeTeam:       m.HomeTeam,
			AwayTeam:       m.AwayTeam,
			League:         m.League,
			Country:        m.Country,
			KickoffAt:      m.KickoffAt,
			Status:         m.Status,
			HomeLogo:       m.HomeLogo,
			AwayLogo:       m.AwayLogo,
			Classification: string(it.Classification),
		}
		view := s.d.Gate.ResolveView(it, access)
		dto.View = string(view)
		if view == model.ViewFullyVisible {
			dto.PredictionURL = "/api/v1/matches/" + url.PathEscape(m.ID) + "/prediction?lang=" + lang.Code()
		} else {
			dto.LockedMessage = locked
		}
		return dto
	})

	api.WriteJSON(w, http.StatusOK, matchesResponse{
		Date:    day.Format("2006-01-02"),
		Lang:    string(lang),
		Access:  toAccessDTO(access),
		Matches: out,
	})
}

// openPrediction is the gate's open action. A locked item never reaches the
// generator; the caller is sent to the upgrade flow instead.
func (s *Server) openPrediction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := language(r)

	item, err := s.d.Matches.Find(ctx, chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			s.writeError(w, r, http.StatusBadRequest, "invalid_match_id", "", false)
		case errors.Is(err, domain.ErrNotFound):
			s.writeError(w, r, http.StatusNotFound, "match_not_found", "", false)
		default:
			logging.With(ctx, s.log).Warn().Err(err).Msg("find match")
			s.writeError(w, r, http.StatusBadGateway, "match_source_unavailable", "", true)
		}
		return
	}

	access, ok := s.currentAccess(w, r)
	if !ok {
		return
	}

	res := s.d.Gate.Open(*item, access)
	metrics.IncGateOpen(string(item.Classification), string(res.Decision))
	if !res.Allowed() {
		w.Header().Set("Location", res.RedirectTo)
		api.WriteJSON(w, http.StatusSeeOther, redirectResponse{Redirect: res.RedirectTo})
		return
	}

	p, err := s.d.Predictions.Generate(ctx, item.Match, lang)
	if err != nil {
		s.writeError(w, r, http.StatusGatewayTimeout, "timeout", "", true)
		return
	}
	api.WriteJSON(w, http.StatusOK, s.d.Gate.RedactPrediction(p, access))
}

// currentAccess is NoAccess for anonymous callers. On a store failure it has
// already written the 503 and returns ok=false.
func (s *Server) currentAccess(w http.ResponseWriter, r *http.Request) (model.EffectiveAccess, bool) {
	subject := subjectFrom(r.Context())
	if subject == "" {
		return model.NoAccess, true
	}
	access, err := s.d.Entitlements.DeriveCurrentAccess(r.Context(), subject)
	if err != nil {
		s.entitlementError(w, r, err)
		return model.NoAccess, false
	}
	return access, true
}

func (s *Server) entitlementError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("entitlement check failed")
		s.writeError(w, r, http.StatusServiceUnavailable, "entitlement_check_failed", "error.entitlement_check_failed", true)
	case errors.Is(err, domain.ErrUnauthenticated):
		s.writeError(w, r, http.StatusUnauthorized, "unauthenticated", "error.unauthenticated", false)
	case errors.Is(err, domain.ErrInvalidArgument):
		s.writeError(w, r, http.StatusBadRequest, "invalid_argument", "", false)
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Msg("entitlement error")
		s.writeError(w, r, http.StatusInternalServerError, "internal_error", "", false)
	}
}
