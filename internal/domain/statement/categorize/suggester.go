package categorize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fmcardoso/splitledger/internal/domain/alias"
)

// BelowThresholdFloor: suggestions under this confidence are not surfaced
// as confident recommendations.
const BelowThresholdFloor = 0.55

// maxAlternatives bounds the ranked alternatives beside the primary.
const maxAlternatives = 2

// Suggestion is the advisory categorization for one transaction.
type Suggestion struct {
	Category       string
	Confidence     float64
	Reasoning      string
	Alternatives   []Alternative
	BelowThreshold bool
}

// Alternative is a lower-ranked category candidate.
type Alternative struct {
	Category   string
	Confidence float64
}

// Config scopes one suggestion run.
type Config struct {
	DefaultCategory string
	// AvailableCategories, when non-empty, restricts suggestions to this
	// set. Rules and aliases bound to other categories are ignored.
	AvailableCategories []string
}

// Suggester runs the two-step categorization: alias lookup, then keyword
// rules, then the configured default.
type Suggester struct {
	aliases alias.Lookup
	engine  *Engine
	logger  *slog.Logger
}

func NewSuggester(aliases alias.Lookup, engine *Engine, logger *slog.Logger) *Suggester {
	if engine == nil {
		engine = NewEngine(DefaultRules())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Suggester{aliases: aliases, engine: engine, logger: logger}
}

// Suggest categorizes one description. The returned suggestion is always
// usable; a non-nil error reports an alias store failure the caller may
// surface as a soft error while keeping the heuristic result.
func (s *Suggester) Suggest(ctx context.Context, description string, cfg Config) (Suggestion, error) {
	allowed := allowSet(cfg.AvailableCategories)

	var lookupErr error
	if s.aliases != nil {
		match, err := s.aliases.Lookup(ctx, description)
		if err != nil {
			lookupErr = fmt.Errorf("alias lookup failed: %w", err)
			s.logger.Warn("alias lookup failed, falling back to rules",
				slog.String("description", description), slog.Any("error", err))
		} else if match != nil && allowed.has(match.Category) {
			return Suggestion{
				Category:   match.Category,
				Confidence: 1.0,
				Reasoning:  fmt.Sprintf("matched merchant alias %q", match.Name),
			}, nil
		}
	}

	scores := s.engine.Classify(description)
	filtered := scores[:0:0]
	for _, sc := range scores {
		if allowed.has(sc.Category) {
			filtered = append(filtered, sc)
		}
	}

	if len(filtered) == 0 || filtered[0].Confidence < BelowThresholdFloor {
		sug := Suggestion{
			Category:       cfg.DefaultCategory,
			Confidence:     0,
			BelowThreshold: true,
		}
		if len(filtered) > 0 {
			// Weak hits still surface as alternatives for the picker.
			sug.Alternatives = alternatives(filtered, 0)
		}
		return sug, lookupErr
	}

	primary := filtered[0]
	return Suggestion{
		Category:     primary.Category,
		Confidence:   primary.Confidence,
		Reasoning:    fmt.Sprintf("description contains %q", primary.Keyword),
		Alternatives: alternatives(filtered, 1),
	}, lookupErr
}

// alternatives takes up to maxAlternatives scores starting at offset.
func alternatives(scores []Score, offset int) []Alternative {
	var alts []Alternative
	for _, sc := range scores[min(offset, len(scores)):] {
		alts = append(alts, Alternative{Category: sc.Category, Confidence: sc.Confidence})
		if len(alts) == maxAlternatives {
			break
		}
	}
	return alts
}

type allowSetT map[string]struct{}

func allowSet(categories []string) allowSetT {
	if len(categories) == 0 {
		return nil
	}
	set := make(allowSetT, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return set
}

// has treats a nil set as "allow everything".
func (s allowSetT) has(category string) bool {
	if s == nil {
		return true
	}
	_, ok := s[category]
	return ok
}
