package usecase

import "github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"

// ResolveView maps a content item and the caller's access to what may be rendered.
// Standard items are always visible; premium items need CanViewPremium.
func ResolveView(item model.ContentItem, access model.EffectiveAccess) model.ViewDecision {
	if item.Classification != model.ClassificationPremium {
		return model.ViewFullyVisible
	}
	if access.CanViewPremium {
		return model.ViewFullyVisible
	}
	return model.ViewLockedPlaceholder
}

// ContentGate wraps ResolveView with the upgrade-flow redirect for open actions.
type ContentGate struct {
	upgradePath string
}

func NewContentGate(upgradePath string) *ContentGate {
	if upgradePath == "" {
		upgradePath = "/settings/upgrade"
	}
	return &ContentGate{upgradePath: upgradePath}
}

func (g *ContentGate) ResolveView(item model.ContentItem, access model.EffectiveAccess) model.ViewDecision {
	return ResolveView(item, access)
}

// Open intercepts an open action. Locked items never yield content, only a redirect.
func (g *ContentGate) Open(item model.ContentItem, access model.EffectiveAccess) model.OpenResult {
	d := ResolveView(item, access)
	if d == model.ViewLockedPlaceholder {
		return model.OpenResult{Decision: d, RedirectTo: g.upgradePath}
	}
	return model.OpenResult{Decision: d}
}

// RedactPrediction strips the VIP-only insight for callers without premium access.
func (g *ContentGate) RedactPrediction(p *model.Prediction, access model.EffectiveAccess) *model.Prediction {
	if p == nil || access.CanViewPremium {
		return p
	}
	return p.WithoutVIP()
}

func (g *ContentGate) UpgradePath() string { return g.upgradePath }
