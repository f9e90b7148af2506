// Package policy holds the verification policy: configurable defaults
// and hard caps controlling cone scope, caching, and host invalidation.
// It follows the gopls/internal/settings shape (a defaulted struct
// plus a validator), loaded from YAML via gopkg.in/yaml.v3.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CacheKeyStrategy selects how diagnostic-cache signatures incorporate
// the planner iteration.
type CacheKeyStrategy string

const (
	CacheKeyCone          CacheKeyStrategy = "cone"
	CacheKeyConeIteration CacheKeyStrategy = "cone+iteration"
)

// HostInvalidation selects how much of the host's cached checker state
// is invalidated after a speculative apply is rolled back during
// verification.
type HostInvalidation string

const (
	InvalidateModified HostInvalidation = "modified"
	InvalidateCone     HostInvalidation = "cone"
	InvalidateFull     HostInvalidation = "full"
)

// ConeExpansion controls how a cone grows beyond a candidate's
// modified files.
type ConeExpansion struct {
	IncludeErrors      bool `yaml:"includeErrors"`
	IncludeReverseDeps bool `yaml:"includeReverseDeps"`
	TopKErrorFiles     int  `yaml:"topKErrorFiles"`
}

// Policy is the verification policy applied throughout one plan
// invocation.
type Policy struct {
	DefaultScope           string           `yaml:"defaultScope"`
	AllowRegressions       bool             `yaml:"allowRegressions"`
	MaxConeFiles           int              `yaml:"maxConeFiles"`
	MaxConeErrors          int              `yaml:"maxConeErrors"`
	ConeExpansion          ConeExpansion    `yaml:"coneExpansion"`
	CacheBeforeDiagnostics bool             `yaml:"cacheBeforeDiagnostics"`
	CacheKeyStrategy       CacheKeyStrategy `yaml:"cacheKeyStrategy"`
	HostInvalidation       HostInvalidation `yaml:"hostInvalidation"`
}

// Default returns the engine's documented defaults.
func Default() Policy {
	return Policy{
		DefaultScope:     "modified",
		AllowRegressions: false,
		MaxConeFiles:     50,
		MaxConeErrors:    100,
		ConeExpansion: ConeExpansion{
			IncludeErrors:      false,
			IncludeReverseDeps: false,
			TopKErrorFiles:     10,
		},
		CacheBeforeDiagnostics: true,
		CacheKeyStrategy:       CacheKeyConeIteration,
		HostInvalidation:       InvalidateModified,
	}
}

// Structural is the "structural" preset: wider cone for fixes expected
// to have cross-file effects.
func Structural() Policy {
	p := Default()
	p.DefaultScope = "errors"
	p.ConeExpansion.IncludeErrors = true
	p.HostInvalidation = InvalidateCone
	return p
}

// Wide is the "wide" preset: widest cone, including reverse
// dependencies, with larger caps.
func Wide() Policy {
	p := Structural()
	p.ConeExpansion.IncludeReverseDeps = true
	p.MaxConeFiles = 200
	p.MaxConeErrors = 400
	return p
}

// Validate rejects non-positive sizes and an inconsistent top-K.
func (p Policy) Validate() error {
	if p.MaxConeFiles <= 0 {
		return fmt.Errorf("policy: maxConeFiles must be positive, got %d", p.MaxConeFiles)
	}
	if p.MaxConeErrors <= 0 {
		return fmt.Errorf("policy: maxConeErrors must be positive, got %d", p.MaxConeErrors)
	}
	if p.ConeExpansion.TopKErrorFiles <= 0 {
		return fmt.Errorf("policy: coneExpansion.topKErrorFiles must be positive, got %d", p.ConeExpansion.TopKErrorFiles)
	}
	if p.ConeExpansion.TopKErrorFiles > p.MaxConeFiles {
		return fmt.Errorf("policy: coneExpansion.topKErrorFiles (%d) must not exceed maxConeFiles (%d)",
			p.ConeExpansion.TopKErrorFiles, p.MaxConeFiles)
	}
	return nil
}

// Load reads a YAML policy file at path, overlaying it onto Default().
func Load(path string) (Policy, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("policy: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("policy: parsing %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}
