//go:build !integration

package usecase_test

import (
	"testing"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/usecase"
)

func TestContentGate(t *testing.T) {
	premium := model.ContentItem{Match: model.Match{ID: "1"}, Classification: model.ClassificationPremium}
	standard := model.ContentItem{Match: model.Match{ID: "2"}, Classification: model.ClassificationStandard}
	vip := model.EffectiveAccess{CanViewPremium: true}

	gate := usecase.NewContentGate("")

	cases := []struct {
		name     string
		item     model.ContentItem
		access   model.EffectiveAccess
		want     model.ViewDecision
		redirect string
	}{
		{"standard without access", standard, model.NoAccess, model.ViewFullyVisible, ""},
		{"standard with access", standard, vip, model.ViewFullyVisible, ""},
		{"premium with access", premium, vip, model.ViewFullyVisible, ""},
		{"premium without access", premium, model.NoAccess, model.ViewLockedPlaceholder, "/settings/upgrade"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := usecase.ResolveView(tc.item, tc.access); got != tc.want {
				t.Fatalf("ResolveView = %s, want %s", got, tc.want)
			}
			res := gate.Open(tc.item, tc.access)
			if res.Decision != tc.want || res.RedirectTo != tc.redirect {
				t.Fatalf("Open = %+v, want decision %s redirect %q", res, tc.want, tc.redirect)
			}
			if res.Allowed() != (tc.want == model.ViewFullyVisible) {
				t.Errorf("Allowed() inconsistent with decision")
			}
		})
	}
}

func TestContentGate_CustomUpgradePath(t *testing.T) {
	gate := usecase.NewContentGate("/vip")
	item := model.ContentItem{Classification: model.ClassificationPremium}
	if got := gate.Open(item, model.NoAccess).RedirectTo; got != "/vip" {
		t.Fatalf("expected /vip, got %q", got)
	}
}

func TestContentGate_RedactPrediction(t *testing.T) {
	gate := usecase.NewContentGate("")
	p := &model.Prediction{
		MatchID:  "1",
		Tips:     []model.BetTip{{BetType: "1X2", Recommendation: "1", Probability: 60, Confidence: model.ConfidenceHigh, Odds: 1.5}},
		Analysis: "a",
		VIP:      &model.VIPInsight{ExactScores: []string{"2-0"}},
	}

	redacted := gate.RedactPrediction(p, model.NoAccess)
	if redacted.VIP != nil {
		t.Fatalf("expected VIP block removed for non-entitled caller")
	}
	if p.VIP == nil {
		t.Fatalf("redaction must not mutate the original bundle")
	}
	if len(redacted.Tips) != 1 || redacted.Analysis != "a" {
		t.Errorf("public fields must survive redaction: %+v", redacted)
	}

	full := gate.RedactPrediction(p, model.EffectiveAccess{CanViewPremium: true})
	if full.VIP == nil {
		t.Fatalf("expected VIP block kept for entitled caller")
	}
	if gate.RedactPrediction(nil, model.NoAccess) != nil {
		t.Errorf("nil in, nil out")
	}
}
