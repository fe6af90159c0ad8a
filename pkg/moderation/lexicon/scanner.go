package lexicon

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/campushub/modgate/pkg/moderation"
)

// nonWord is anything that cannot be part of a token in a word-boundary family.
// Combining marks are included so Devanagari and similar scripts keep their
// vowel signs inside the token.
const nonWord = `[^\p{L}\p{M}\p{N}]`

var typographic = strings.NewReplacer(
	"‘", "'", "’", "'", "ʼ", "'",
	"“", `"`, "”", `"`,
	"\u00a0", " ",
)

var leet = strings.NewReplacer(
	"0", "o", "1", "i", "3", "e", "4", "a",
	"5", "s", "7", "t", "@", "a", "$", "s",
)

type familyMatcher struct {
	name string
	re   *regexp.Regexp
}

// Scanner is the deterministic first stage of the pipeline. It is immutable
// after construction and safe for concurrent use.
type Scanner struct {
	version     string
	families    []familyMatcher
	threats     []*regexp.Regexp
	leetFolding bool
}

type Option func(*scannerOptions)

type scannerOptions struct {
	tiers       map[Tier]bool
	leetFolding bool
}

// WithTiers selects the term tiers to compile. Core is used when none are given.
func WithTiers(tiers ...Tier) Option {
	return func(o *scannerOptions) {
		if len(tiers) == 0 {
			return
		}
		o.tiers = make(map[Tier]bool, len(tiers))
		for _, t := range tiers {
			o.tiers[t] = true
		}
	}
}

func WithLeetFolding(enabled bool) Option {
	return func(o *scannerOptions) {
		o.leetFolding = enabled
	}
}

func NewScanner(table *Table, opts ...Option) (*Scanner, error) {
	if table == nil {
		return nil, fmt.Errorf("term table is required")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	o := &scannerOptions{tiers: map[Tier]bool{TierCore: true}, leetFolding: true}
	for _, opt := range opts {
		opt(o)
	}

	s := &Scanner{version: table.Version, leetFolding: o.leetFolding}
	for _, f := range table.Families {
		terms := f.terms(o.tiers)
		if len(terms) == 0 {
			continue
		}
		re, err := compileFamily(f.Boundary, terms)
		if err != nil {
			return nil, fmt.Errorf("family %s: %w", f.Name, err)
		}
		s.families = append(s.families, familyMatcher{name: f.Name, re: re})
	}
	for _, p := range table.Threats {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("threat pattern %q: %w", p, err)
		}
		s.threats = append(s.threats, re)
	}
	return s, nil
}

// compileFamily builds one alternation per family. Longer terms are tried
// first so that multi-word entries win over their prefixes.
func compileFamily(boundary Boundary, terms []string) (*regexp.Regexp, error) {
	seen := make(map[string]struct{}, len(terms))
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = normalize(t)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })

	alternation := "(" + strings.Join(quoted, "|") + ")"
	if boundary == BoundaryWord {
		return regexp.Compile("(?:^|" + nonWord + ")" + alternation + "(?:$|" + nonWord + ")")
	}
	return regexp.Compile(alternation)
}

func normalize(s string) string {
	s = typographic.Replace(strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}

func (s *Scanner) Version() string {
	return s.version
}

// Families lists the compiled family names in match order.
func (s *Scanner) Families() []string {
	names := make([]string, 0, len(s.families))
	for _, f := range s.families {
		names = append(names, f.name)
	}
	return names
}

// Scan checks severe terms first, then threat patterns. The first match wins.
func (s *Scanner) Scan(title, content string) moderation.RuleVerdict {
	buf := normalize(title + "\n" + content)

	if term, ok := s.matchSevere(buf); ok {
		return severeVerdict(term)
	}
	if s.leetFolding {
		if folded := leet.Replace(buf); folded != buf {
			if term, ok := s.matchSevere(folded); ok {
				return severeVerdict(term)
			}
		}
	}

	for _, re := range s.threats {
		if m := re.FindString(buf); m != "" {
			return moderation.RuleVerdict{
				Triggered:   true,
				ReasonCode:  moderation.ReasonThreat,
				MatchedTerm: m,
				Flags:       moderation.NewFlags(moderation.FlagThreat, moderation.FlagViolentContent),
			}
		}
	}

	return moderation.RuleVerdict{
		ReasonCode: moderation.ReasonNone,
		Flags:      moderation.NewFlags(),
	}
}

func (s *Scanner) matchSevere(buf string) (string, bool) {
	for _, f := range s.families {
		if m := f.re.FindStringSubmatch(buf); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func severeVerdict(term string) moderation.RuleVerdict {
	return moderation.RuleVerdict{
		Triggered:   true,
		ReasonCode:  moderation.ReasonSevereLanguage,
		MatchedTerm: term,
		Flags:       moderation.NewFlags(moderation.FlagHateSpeech, moderation.FlagSevereLanguage),
	}
}
