package conf

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// CatalogConfig is the YAML form of the survey catalog
type CatalogConfig struct {
	Version     string                      `yaml:"version"`
	AnswerTypes map[string]AnswerTypeConfig `yaml:"answer_types"`
	Risk        RiskConfig                  `yaml:"risk"`
	Surveys     map[string]SurveyConfig     `yaml:"surveys"`
	Messages    MessagesConfig              `yaml:"messages"`
}

// AnswerTypeConfig lists the accepted literals of an answer type
type AnswerTypeConfig struct {
	Values  []string          `yaml:"values"`
	Aliases map[string]string `yaml:"aliases"`
}

// RiskConfig configures the alert evaluator
type RiskConfig struct {
	Key              string   `yaml:"key"`
	NoneValue        string   `yaml:"none_value"`
	TensionKeys      []string `yaml:"tension_keys"`
	TensionThreshold int      `yaml:"tension_threshold"`
}

// SurveyConfig is one survey kind
type SurveyConfig struct {
	Title     string           `yaml:"title"`
	Questions []QuestionConfig `yaml:"questions"`
}

// QuestionConfig is one question
type QuestionConfig struct {
	Key    string `yaml:"key"`
	Prompt string `yaml:"prompt"`
	Type   string `yaml:"type"`
}

// MessagesConfig contains user-facing texts
type MessagesConfig struct {
	Greeting        string `yaml:"greeting"`
	Help            string `yaml:"help"`
	Rejected        string `yaml:"rejected"`
	Saved           string `yaml:"saved"`
	SaveFailed      string `yaml:"save_failed"`
	Cancelled       string `yaml:"cancelled"`
	NothingToCancel string `yaml:"nothing_to_cancel"`
	NoSurvey        string `yaml:"no_survey"`
	OptedOut        string `yaml:"opted_out"`
	UnknownCommand  string `yaml:"unknown_command"`
	StatsTemplate   string `yaml:"stats_template"`
	AveragesHeader  string `yaml:"averages_header"`
	AlertRisk       string `yaml:"alert_risk"`
	AlertTension    string `yaml:"alert_tension"`
}

// DefaultCatalog returns the built-in catalog
func DefaultCatalog() (*domain.Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads the catalog at path, or the built-in one when path is empty
func LoadCatalog(path string) (*domain.Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog. Empty messages fall back to the built-in texts.
func ParseCatalog(data []byte) (*domain.Catalog, error) {
	var cfg CatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse catalog: %v", domain.ErrCatalog, err)
	}
	if err := cfg.fillDefaults(); err != nil {
		return nil, err
	}
	catalog, err := cfg.ToCatalog()
	if err != nil {
		return nil, err
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// fillDefaults fills in default messages for empty fields
func (c *CatalogConfig) fillDefaults() error {
	var defaults CatalogConfig
	if err := yaml.Unmarshal(defaultCatalogYAML, &defaults); err != nil {
		return fmt.Errorf("failed to parse built-in catalog: %w", err)
	}
	d := defaults.Messages
	m := &c.Messages
	for _, f := range []struct {
		dst *string
		def string
	}{
		{&m.Greeting, d.Greeting},
		{&m.Help, d.Help},
		{&m.Rejected, d.Rejected},
		{&m.Saved, d.Saved},
		{&m.SaveFailed, d.SaveFailed},
		{&m.Cancelled, d.Cancelled},
		{&m.NothingToCancel, d.NothingToCancel},
		{&m.NoSurvey, d.NoSurvey},
		{&m.OptedOut, d.OptedOut},
		{&m.UnknownCommand, d.UnknownCommand},
		{&m.StatsTemplate, d.StatsTemplate},
		{&m.AveragesHeader, d.AveragesHeader},
		{&m.AlertRisk, d.AlertRisk},
		{&m.AlertTension, d.AlertTension},
	} {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
	if c.Risk.TensionThreshold == 0 {
		c.Risk.TensionThreshold = defaults.Risk.TensionThreshold
	}
	return nil
}

// ToCatalog converts to the domain catalog; alias keys are case-folded
func (c *CatalogConfig) ToCatalog() (*domain.Catalog, error) {
	catalog := &domain.Catalog{
		Version: c.Version,
		Surveys: make(map[domain.SurveyKind]*domain.Survey, len(c.Surveys)),
		Domains: make(map[domain.AnswerType]domain.AnswerDomain, len(c.AnswerTypes)),
		Risk: domain.RiskPolicy{
			RiskKey:          c.Risk.Key,
			NoneValue:        c.Risk.NoneValue,
			TensionKeys:      c.Risk.TensionKeys,
			TensionThreshold: c.Risk.TensionThreshold,
		},
		Messages: domain.Messages(c.Messages),
	}

	for name, at := range c.AnswerTypes {
		t := domain.AnswerType(name)
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown answer type %q", domain.ErrCatalog, name)
		}
		aliases := make(map[string]string, len(at.Aliases))
		for alias, canonical := range at.Aliases {
			aliases[domain.Fold(alias)] = canonical
		}
		catalog.Domains[t] = domain.AnswerDomain{Values: at.Values, Aliases: aliases}
	}

	for name, s := range c.Surveys {
		kind, err := domain.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCatalog, err)
		}
		survey := &domain.Survey{Kind: kind, Title: s.Title}
		for _, q := range s.Questions {
			survey.Questions = append(survey.Questions, domain.Question{
				Key:    q.Key,
				Prompt: q.Prompt,
				Type:   domain.AnswerType(q.Type),
			})
		}
		catalog.Surveys[kind] = survey
	}

	// Alias targets must be canonical literals
	for t, d := range catalog.Domains {
		for alias, canonical := range d.Aliases {
			if !contains(d.Values, canonical) {
				return nil, fmt.Errorf("%w: %s alias %q maps to unknown value %q", domain.ErrCatalog, t, alias, canonical)
			}
		}
	}
	return catalog, nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
