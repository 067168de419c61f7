package model

import "time"

// Classification is assigned once when a match is fetched and never changes afterwards.
type Classification string

const (
	ClassificationStandard Classification = "standard"
	ClassificationPremium  Classification = "premium"
)

// Match is one fixture as supplied by the match source.
type Match struct {
	ID        string    `json:"id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	League    string    `json:"league"`
	LeagueID  int       `json:"league_id"`
	Country   string    `json:"country"`
	KickoffAt time.Time `json:"kickoff_at"`
	Status    string    `json:"status"`
	HomeLogo  string    `json:"home_logo,omitempty"`
	AwayLogo  string    `json:"away_logo,omitempty"`
}

// Title renders "Home vs Away".
func (m Match) Title() string {
	return m.HomeTeam + " vs " + m.AwayTeam
}

// ContentItem is a match/prediction bundle carrying its gate classification.
type ContentItem struct {
	Match          Match
	Classification Classification
}

func (c ContentItem) ID() string { return c.Match.ID }

// ViewDecision is what the content gate allows the caller to render.
type ViewDecision string

const (
	ViewFullyVisible      ViewDecision = "fully_visible"
	ViewLockedPlaceholder ViewDecision = "locked_placeholder"
)

// OpenResult is the outcome of a user trying to open a content item.
// RedirectTo is non-empty only for locked items.
type OpenResult struct {
	Decision   ViewDecision
	RedirectTo string
}

func (r OpenResult) Allowed() bool { return r.Decision == ViewFullyVisible }
