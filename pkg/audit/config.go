package audit

import (
	"fmt"

	"github.com/entrhq/siteaudit/pkg/wcag"
)

// DefaultPassScore is the accessibility score a page needs to pass.
const DefaultPassScore = 70.0

// Config selects what the pipeline checks on each page.
type Config struct {
	Level       wcag.Level `yaml:"level"`
	PassScore   float64    `yaml:"pass_score"`
	Performance bool       `yaml:"performance"`
	SEO         bool       `yaml:"seo"`
	Security    bool       `yaml:"security"`

	Mobile        bool `yaml:"mobile"`
	ContentWeight bool `yaml:"content_weight"`
}

// DefaultConfig audits at WCAG AA with every analyzer enabled.
func DefaultConfig() Config {
	return Config{
		Level:       wcag.LevelAA,
		PassScore:   DefaultPassScore,
		Performance: true,
		SEO:         true,
		Security:    true,

		Mobile:        true,
		ContentWeight: true,
	}
}

// Validate checks the level and pass score.
func (c Config) Validate() error {
	if c.Level < wcag.LevelA || c.Level > wcag.LevelAAA {
		return fmt.Errorf("invalid WCAG level %d", int(c.Level))
	}
	if c.PassScore < 0 || c.PassScore > 100 {
		return fmt.Errorf("pass score must be between 0 and 100, got %g", c.PassScore)
	}
	return nil
}
