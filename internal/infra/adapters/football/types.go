package football

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
)

type fixturesResponse struct {
	Results  int             `json:"results"`
	Errors   json.RawMessage `json:"errors"`
	Response []fixtureItem   `json:"response"`
}

// errorMessage flattens the "errors" field, which the API sends as [] when
// empty and as an object of field -> message otherwise.
func (r *fixturesResponse) errorMessage() string {
	raw := strings.TrimSpace(string(r.Errors))
	if raw == "" || raw == "[]" || raw == "{}" || raw == "null" {
		return ""
	}
	var byField map[string]string
	if err := json.Unmarshal(r.Errors, &byField); err == nil {
		parts := make([]string, 0, len(byField))
		for k, v := range byField {
			parts = append(parts, fmt.Sprintf("%s: %s", k, v))
		}
		sort.Strings(parts)
		return strings.Join(parts, "; ")
	}
	return raw
}

type fixtureItem struct {
	Fixture struct {
		ID     int       `json:"id"`
		Date   time.Time `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"league"`
	Teams struct {
		Home team `json:"home"`
		Away team `json:"away"`
	} `json:"teams"`
}

type team struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

func (f fixtureItem) toMatch() model.Match {
	return model.Match{
		ID:        strconv.Itoa(f.Fixture.ID),
		HomeTeam:  f.Teams.Home.Name,
		AwayTeam:  f.Teams.Away.Name,
		League:    f.League.Name,
		LeagueID:  f.League.ID,
		Country:   f.League.Country,
		KickoffAt: f.Fixture.Date,
		Status:    f.Fixture.Status.Short,
		HomeLogo:  f.Teams.Home.Logo,
		AwayLogo:  f.Teams.Away.Logo,
	}
}
