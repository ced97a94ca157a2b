package utils

import (
	"fmt"
	"strings"
)

// Config holds the options for assembling and running a model.
type Config struct {
	Model       string
	Dataset     string
	OutFeatures int
	WeightsPath string
	Seed        int64
	Run         bool
	Encrypted   bool
	LogN        int
}

// ParseModelList splits a comma or whitespace separated list of model names.
func ParseModelList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(strings.TrimSpace(f)))
	}
	return out
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Model == "" {
		return fmt.Errorf("model name must be set")
	}

	if config.Dataset == "" {
		return fmt.Errorf("dataset must be set")
	}

	if config.OutFeatures <= 0 {
		return fmt.Errorf("out features must be positive")
	}

	if config.Encrypted && (config.LogN < 10 || config.LogN > 16) {
		return fmt.Errorf("logN must be in [10,16] when encryption is enabled")
	}

	return nil
}
