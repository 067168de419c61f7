package usecase

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
)

// CodeValidator decides what a submitted access code grants. It does no I/O and
// never mutates anything, so it is safe to call on every keystroke.
type CodeValidator struct {
	adminCode string
	codes     map[string]struct{}
	now       func() time.Time
}

// NewCodeValidator builds the immutable code set. Duplicates are harmless but
// point at a bug in whatever produced the list, so they are logged.
func NewCodeValidator(adminCode string, codes []string, now func() time.Time, logger *zerolog.Logger) *CodeValidator {
	if now == nil {
		now = time.Now
	}
	normalized := lo.Compact(lo.Map(codes, func(c string, _ int) string { return model.NormalizeCode(c) }))
	unique := lo.Uniq(normalized)
	if dup := len(normalized) - len(unique); dup > 0 && logger != nil {
		logger.Warn().Int("duplicates", dup).Int("codes", len(unique)).Msg("access code list contains duplicates")
	}

	set := make(map[string]struct{}, len(unique))
	for _, c := range unique {
		set[c] = struct{}{}
	}
	return &CodeValidator{
		adminCode: model.NormalizeCode(adminCode),
		codes:     set,
		now:       now,
	}
}

// Validate classifies raw after trimming and uppercasing it.
func (v *CodeValidator) Validate(raw string) model.ValidationOutcome {
	code := model.NormalizeCode(raw)
	if code == "" {
		return model.ValidationOutcome{Kind: model.OutcomeNoMatch}
	}
	if v.adminCode != "" && code == v.adminCode {
		return model.ValidationOutcome{Kind: model.OutcomeGrantPermanent}
	}
	if _, ok := v.codes[code]; ok {
		return model.ValidationOutcome{Kind: model.OutcomeGrantTimeBoxed, ActivatedAt: v.now()}
	}
	return model.ValidationOutcome{Kind: model.OutcomeNoMatch}
}

// Size is the number of distinct ordinary codes.
func (v *CodeValidator) Size() int { return len(v.codes) }
