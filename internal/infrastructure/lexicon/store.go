package lexicon

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/servvia/health-assistant/internal/core/domain"
)

const (
	defaultQuotePreamble      = "Hello %s! Based on available information:"
	defaultAllFiltered        = "Hello %s! Based on your medical profile, I couldn't find remedies that are safe for your specific conditions regarding '%s'. Please consult your healthcare provider for personalized advice."
	defaultDisclaimerTemplate = "Medical Note: Considering your %s, I've personalized these recommendations to exclude potentially harmful ingredients. Always consult your healthcare provider before trying new remedies."
)

type fileFormat struct {
	Messages          domain.AssistantMessages        `yaml:"messages"`
	Greetings         []string                        `yaml:"greetings"`
	ConditionKeywords []string                        `yaml:"condition_keywords"`
	Phrases           map[string]domain.PhraseEntry   `yaml:"phrases"`
	Conditions        map[string]domain.ConditionRule `yaml:"conditions"`
	FollowUps         followUpSets                    `yaml:"follow_ups"`
}

type followUpSets struct {
	Content []string `yaml:"content"`
	Generic []string `yaml:"generic"`
}

type snapshot struct {
	rules             domain.ContraindicationRuleSet
	phrases           map[string]domain.PhraseEntry
	conditionKeywords []string
	greetings         []string
	contentFollowUps  []string
	genericFollowUps  []string
	messages          domain.AssistantMessages
}

// Store serves lexicon snapshots to the pipeline. Reload parses the file
// into a fresh snapshot and swaps it in atomically, so concurrent readers
// never observe a partially loaded lexicon. Snapshots are never mutated
// after the swap.
type Store struct {
	path    string
	current atomic.Pointer[snapshot]
}

func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Reload() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read lexicon: %w", err)
	}

	var file fileFormat
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse lexicon: %w", err)
	}

	snap, err := buildSnapshot(file)
	if err != nil {
		return fmt.Errorf("validate lexicon: %w", err)
	}

	s.current.Store(snap)
	return nil
}

func buildSnapshot(file fileFormat) (*snapshot, error) {
	if len(file.Conditions) == 0 {
		return nil, fmt.Errorf("no conditions defined")
	}

	rules := make(domain.ContraindicationRuleSet, len(file.Conditions))
	for condition, rule := range file.Conditions {
		display := strings.TrimSpace(rule.DisplayName)
		if display == "" {
			return nil, fmt.Errorf("condition %q has no display name", condition)
		}
		avoid := lowerAll(rule.AvoidTerms)
		if len(avoid) == 0 {
			return nil, fmt.Errorf("condition %q has no avoid terms", condition)
		}
		warning := strings.TrimSpace(rule.Warning)
		if warning == "" {
			warning = fmt.Sprintf("Avoiding ingredients not recommended for %s", display)
		}
		rules[condition] = domain.ConditionRule{
			DisplayName: display,
			Warning:     warning,
			AvoidTerms:  avoid,
		}
	}

	phrases := make(map[string]domain.PhraseEntry, len(file.Phrases))
	for phrase, entry := range file.Phrases {
		key := strings.ToLower(strings.TrimSpace(phrase))
		if key == "" {
			continue
		}
		if entry.Canonical == "" || entry.Language == "" {
			return nil, fmt.Errorf("phrase %q is missing canonical text or language", phrase)
		}
		phrases[key] = entry
	}

	if len(file.FollowUps.Content) == 0 || len(file.FollowUps.Generic) == 0 {
		return nil, fmt.Errorf("follow-up sets must not be empty")
	}

	messages := file.Messages
	if strings.TrimSpace(messages.Welcome) == "" {
		return nil, fmt.Errorf("welcome message is required")
	}
	if strings.TrimSpace(messages.Consult) == "" {
		return nil, fmt.Errorf("consult message is required")
	}
	if strings.TrimSpace(messages.AllFiltered) == "" {
		messages.AllFiltered = defaultAllFiltered
	}
	if strings.TrimSpace(messages.QuotePreamble) == "" {
		messages.QuotePreamble = defaultQuotePreamble
	}
	if strings.TrimSpace(messages.DisclaimerTemplate) == "" {
		messages.DisclaimerTemplate = defaultDisclaimerTemplate
	}

	return &snapshot{
		rules:             rules,
		phrases:           phrases,
		conditionKeywords: lowerAll(file.ConditionKeywords),
		greetings:         lowerAll(file.Greetings),
		contentFollowUps:  file.FollowUps.Content,
		genericFollowUps:  file.FollowUps.Generic,
		messages:          messages,
	}, nil
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (s *Store) Rules() domain.ContraindicationRuleSet {
	return s.current.Load().rules
}

func (s *Store) Phrases() map[string]domain.PhraseEntry {
	return s.current.Load().phrases
}

func (s *Store) ConditionKeywords() []string {
	return s.current.Load().conditionKeywords
}

func (s *Store) Greetings() []string {
	return s.current.Load().greetings
}

func (s *Store) FollowUps() (content []string, generic []string) {
	snap := s.current.Load()
	return snap.contentFollowUps, snap.genericFollowUps
}

func (s *Store) Messages() domain.AssistantMessages {
	return s.current.Load().messages
}
