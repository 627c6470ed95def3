package app

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// DocumentPaths are .hcl files or directories merged into one document.
	DocumentPaths []string `validate:"required,min=1,dive,required"`

	LogFormat string `validate:"oneof=text json"`
	LogLevel  string `validate:"oneof=debug info warn error"`

	// Variant and Seed replace the document's own variant settings when
	// OverrideVariant is set. Seed may stay empty to keep the document's.
	OverrideVariant bool
	Variant         int `validate:"gte=0"`
	Seed            string

	// Variants is how many consecutive variants RenderVariants renders,
	// starting at Variant, using at most Workers sessions at a time.
	Variants int `validate:"gte=1,lte=100000"`
	Workers  int `validate:"gte=1,lte=1024"`

	DisplayDigits int  `validate:"gte=0,lte=17"`
	ForDisplay    bool
	IncludeStale  bool

	// ActionsPath is an optional YAML script applied before rendering.
	ActionsPath string `validate:"omitempty,file"`

	// Host settings used by Link.
	HostURL            string `validate:"omitempty,url"`
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration `validate:"gte=0"`
	HealthcheckPort    int           `validate:"gte=0,lte=65535"`
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Variants == 0 {
		cfg.Variants = 1
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
