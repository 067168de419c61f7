package model

import (
	"fmt"
	"strings"
	"time"
)

type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

func ParseConfidence(s string) (Confidence, bool) {
	switch c := Confidence(strings.ToUpper(strings.TrimSpace(s))); c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return c, true
	}
	return "", false
}

// BetTip is one entry of the ordered prediction list.
type BetTip struct {
	BetType        string     `json:"bet_type"`
	Recommendation string     `json:"recommendation"`
	Probability    int        `json:"probability"`
	Confidence     Confidence `json:"confidence"`
	Odds           float64    `json:"odds"`
}

// MatchStats is the optional detailed block of the VIP insight.
type MatchStats struct {
	HomeForm          string  `json:"home_form,omitempty"`
	AwayForm          string  `json:"away_form,omitempty"`
	ExpectedGoalsHome float64 `json:"expected_goals_home,omitempty"`
	ExpectedGoalsAway float64 `json:"expected_goals_away,omitempty"`
	BothTeamsToScore  int     `json:"btts_probability,omitempty"`
	OverTwoAndHalf    int     `json:"over_2_5_probability,omitempty"`
	KeyAbsences       string  `json:"key_absences,omitempty"`
	HeadToHeadSummary string  `json:"head_to_head,omitempty"`
}

// VIPInsight is only shown to entitled subjects.
type VIPInsight struct {
	ExactScores []string    `json:"exact_scores"`
	Stats       *MatchStats `json:"stats,omitempty"`
}

// Prediction is the structured bundle produced for one match.
// IsFallback tells callers the static degraded bundle was returned instead of a fresh result.
type Prediction struct {
	ID          string      `json:"id"`
	MatchID     string      `json:"match_id"`
	Language    Language    `json:"language"`
	Tips        []BetTip    `json:"predictions"`
	Analysis    string      `json:"analysis"`
	VIP         *VIPInsight `json:"vip_insight,omitempty"`
	Model       string      `json:"model,omitempty"`
	GeneratedAt time.Time   `json:"generated_at"`
	IsFallback  bool        `json:"is_fallback"`
}

// Validate checks the invariants a fresh bundle must satisfy before it is served or cached.
func (p *Prediction) Validate() error {
	if p == nil {
		return fmt.Errorf("nil prediction")
	}
	if len(p.Tips) == 0 {
		return fmt.Errorf("no predictions")
	}
	for i, t := range p.Tips {
		if strings.TrimSpace(t.BetType) == "" || strings.TrimSpace(t.Recommendation) == "" {
			return fmt.Errorf("tip %d: missing bet type or recommendation", i)
		}
		if t.Probability < 0 || t.Probability > 100 {
			return fmt.Errorf("tip %d: probability %d out of range", i, t.Probability)
		}
		if _, ok := ParseConfidence(string(t.Confidence)); !ok {
			return fmt.Errorf("tip %d: bad confidence %q", i, t.Confidence)
		}
		if t.Odds <= 1 {
			return fmt.Errorf("tip %d: odds %.2f must be above 1", i, t.Odds)
		}
	}
	if strings.TrimSpace(p.Analysis) == "" {
		return fmt.Errorf("empty analysis")
	}
	return nil
}

// WithoutVIP returns a shallow copy with the VIP insight removed.
func (p *Prediction) WithoutVIP() *Prediction {
	if p == nil {
		return nil
	}
	cp := *p
	cp.VIP = nil
	return &cp
}
