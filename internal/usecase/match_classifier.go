package usecase

import (
	"strings"

	"github.com/samber/lo"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
)

// DefaultEliteTeams is the popularity list used when config does not supply one.
// Short forms ("Man Utd", "PSG") are there on purpose: matching is by substring.
var DefaultEliteTeams = []string{
	"Real Madrid", "Barcelona", "Atletico Madrid",
	"Manchester City", "Man City", "Manchester United", "Man Utd",
	"Liverpool", "Arsenal", "Chelsea", "Tottenham",
	"Bayern", "Dortmund",
	"Paris Saint Germain", "Paris Saint-Germain", "PSG", "Marseille",
	"Juventus", "Inter", "AC Milan", "Napoli",
	"Benfica", "Porto", "Ajax",
}

// MatchClassifier labels matches premium when either side contains an elite name.
// Substring matching can produce false positives on partial collisions
// ("Inter" inside "Inter Miami"); that is accepted.
type MatchClassifier struct {
	elite []string
}

func NewMatchClassifier(elite []string) *MatchClassifier {
	if len(elite) == 0 {
		elite = DefaultEliteTeams
	}
	names := lo.Uniq(lo.Compact(lo.Map(elite, func(s string, _ int) string {
		return strings.ToLower(strings.TrimSpace(s))
	})))
	return &MatchClassifier{elite: names}
}

func (c *MatchClassifier) Classify(m model.Match) model.Classification {
	home := strings.ToLower(m.HomeTeam)
	away := strings.ToLower(m.AwayTeam)
	premium := lo.ContainsBy(c.elite, func(name string) bool {
		return strings.Contains(home, name) || strings.Contains(away, name)
	})
	if premium {
		return model.ClassificationPremium
	}
	return model.ClassificationStandard
}
