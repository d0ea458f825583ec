package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/servvia/health-assistant/internal/core/domain"
	"github.com/servvia/health-assistant/internal/core/ports"
)

const allFilteredWarning = "All content filtered out by medical profile"

// SafetyFilter drops retrieved chunks that mention ingredients
// contraindicated by the caller's medical profile. Matching is word-boundary
// on lowercased text, so "honey" drops a honey remedy but leaves "honeydew"
// alone.
type SafetyFilter struct {
	lexicon ports.Lexicon
}

func NewSafetyFilter(lexicon ports.Lexicon) *SafetyFilter {
	return &SafetyFilter{lexicon: lexicon}
}

// avoidCategory is one warning-producing group of avoid terms: a condition
// rule, or the profile's allergy list as a whole.
type avoidCategory struct {
	warning  string
	matchers []*regexp.Regexp
}

func (c avoidCategory) matches(loweredText string) bool {
	for _, m := range c.matchers {
		if m.MatchString(loweredText) {
			return true
		}
	}
	return false
}

func (f *SafetyFilter) Filter(chunks []domain.ContentChunk, profile *domain.MedicalProfile) (domain.FilterResult, error) {
	if profile == nil || !profile.HasRestrictions() {
		return domain.FilterResult{SafeChunks: chunks}, nil
	}

	categories, err := f.buildCategories(profile)
	if err != nil {
		return domain.FilterResult{}, domain.WrapError(domain.ErrFilterInternal, "build avoid set", err)
	}

	safe := make([]domain.ContentChunk, 0, len(chunks))
	triggered := make([]bool, len(categories))

	for _, chunk := range chunks {
		lowered := strings.ToLower(chunk.Text)
		drop := false
		for i, category := range categories {
			if category.matches(lowered) {
				triggered[i] = true
				drop = true
			}
		}
		if !drop {
			safe = append(safe, chunk)
		}
	}

	result := domain.FilterResult{
		SafeChunks: safe,
		Disclaimer: f.disclaimer(profile),
	}
	for i, category := range categories {
		if triggered[i] {
			result.Warnings = append(result.Warnings, category.warning)
		}
	}
	if len(chunks) > 0 && len(safe) == 0 {
		result.AllFiltered = true
		result.Warnings = append(result.Warnings, allFilteredWarning)
	}

	return result, nil
}

// buildCategories walks the profile's active condition flags and allergy
// list, in the profile's stable order, allergies last.
func (f *SafetyFilter) buildCategories(profile *domain.MedicalProfile) ([]avoidCategory, error) {
	rules := f.lexicon.Rules()
	var categories []avoidCategory

	for _, condition := range profile.ActiveConditions() {
		rule, ok := rules[condition]
		if !ok {
			continue
		}
		matchers, err := compileTermMatchers(rule.AvoidTerms)
		if err != nil {
			return nil, err
		}
		if len(matchers) == 0 {
			continue
		}
		categories = append(categories, avoidCategory{warning: rule.Warning, matchers: matchers})
	}

	if len(profile.Allergies) > 0 {
		matchers, err := compileTermMatchers(profile.Allergies)
		if err != nil {
			return nil, err
		}
		if len(matchers) > 0 {
			categories = append(categories, avoidCategory{
				warning:  "Avoiding your allergies: " + strings.Join(profile.Allergies, ", "),
				matchers: matchers,
			})
		}
	}

	return categories, nil
}

// disclaimer enumerates every condition considered, whether or not it
// dropped anything, matching the personalization note users expect whenever
// a restricted profile is on file.
func (f *SafetyFilter) disclaimer(profile *domain.MedicalProfile) string {
	rules := f.lexicon.Rules()
	var considered []string
	for _, condition := range profile.ActiveConditions() {
		if rule, ok := rules[condition]; ok {
			considered = append(considered, rule.DisplayName)
		}
	}
	if len(profile.Allergies) > 0 {
		considered = append(considered, "allergies to "+strings.Join(profile.Allergies, ", "))
	}
	if len(considered) == 0 {
		return ""
	}
	return fmt.Sprintf(f.lexicon.Messages().DisclaimerTemplate, strings.Join(considered, ", "))
}

func compileTermMatchers(terms []string) ([]*regexp.Regexp, error) {
	matchers := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(term) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compile avoid term %q: %w", term, err)
		}
		matchers = append(matchers, re)
	}
	return matchers, nil
}
