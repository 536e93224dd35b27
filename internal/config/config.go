package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
	"github.com/dev-team-404/slea-ssem-sub001/internal/engine"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Catalog struct {
		TTL string `yaml:"ttl"`
	} `yaml:"catalog"`
	Assessment Assessment `yaml:"engine"`
}

// Assessment holds the engine tunables as they appear in YAML. Zero values fall
// back to engine.DefaultSettings.
type Assessment struct {
	CohortWindow        string             `yaml:"cohort_window"`
	ConfidenceThreshold int                `yaml:"confidence_threshold"`
	RoundWeights        []float64          `yaml:"round_weights"`
	GradeCutoffs        map[string]float64 `yaml:"grade_cutoffs"`
	Categories          []string           `yaml:"categories"`
	DefaultDifficulty   float64            `yaml:"default_difficulty"`
	DefaultRoundSize    int                `yaml:"default_round_size"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Engine converts the engine section into validated settings.
func (c Config) Engine() (engine.Settings, error) {
	s := engine.DefaultSettings()
	a := c.Assessment

	if a.CohortWindow != "" {
		window, err := time.ParseDuration(a.CohortWindow)
		if err != nil {
			return engine.Settings{}, fmt.Errorf("parse cohort_window %q: %w", a.CohortWindow, err)
		}
		s.CohortWindow = window
	}
	if a.ConfidenceThreshold != 0 {
		s.ConfidenceThreshold = a.ConfidenceThreshold
	}
	if len(a.RoundWeights) > 0 {
		s.RoundWeights = a.RoundWeights
	}
	if len(a.Categories) > 0 {
		s.Categories = a.Categories
	}
	if a.DefaultDifficulty != 0 {
		s.DefaultDifficulty = a.DefaultDifficulty
	}
	if a.DefaultRoundSize != 0 {
		s.DefaultRoundSize = a.DefaultRoundSize
	}
	if len(a.GradeCutoffs) > 0 {
		scale := make(engine.GradeScale, 0, len(domain.Grades))
		for _, g := range domain.Grades {
			cutoff, ok := a.GradeCutoffs[string(g)]
			if !ok {
				return engine.Settings{}, fmt.Errorf("%w: missing cutoff for %s", domain.ErrInvalidGradeScale, g)
			}
			scale = append(scale, engine.Cutoff{Grade: g, Min: cutoff})
		}
		if len(a.GradeCutoffs) != len(domain.Grades) {
			return engine.Settings{}, fmt.Errorf("%w: unknown grade in cutoffs", domain.ErrInvalidGradeScale)
		}
		s.Scale = scale
	}
	if err := s.Validate(); err != nil {
		return engine.Settings{}, err
	}
	return s, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
