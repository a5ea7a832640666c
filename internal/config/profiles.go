package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/leadlens/leadlens/internal/model"
)

// DefaultProfileFile is the default profile file name.
const DefaultProfileFile = ".leadlens"

// ErrProfileFileNotFound is returned when the profile file does not exist.
var ErrProfileFileNotFound = errors.New("profile file not found")

// WeightProfile is one named set of subscore weights in the profile file.
type WeightProfile struct {
	ICPFit         float64 `yaml:"icpFit"`
	Pain           float64 `yaml:"pain"`
	Reachability   float64 `yaml:"reachability"`
	ComplianceRisk float64 `yaml:"complianceRisk"`
}

// File represents the structure of the .leadlens profile file.
// It lets operators define reusable scoring weight profiles and extend the
// booking vendor signature table without rebuilding.
type File struct {
	// Profiles maps profile names to subscore weights. A query naming a
	// profile resolves against this map.
	Profiles map[string]WeightProfile `yaml:"profiles,omitempty"`

	// BookingPatterns are extra lowercase booking vendor substrings added
	// to the audit engine's fixed table. They rank below the built-in
	// signatures, preserving first-match precedence of the fixed table.
	BookingPatterns []string `yaml:"bookingPatterns,omitempty"`
}

// LoadProfileFile loads scoring profiles from a YAML file.
// If the file does not exist, it returns ErrProfileFileNotFound so callers
// can distinguish a missing optional file from a broken one.
func LoadProfileFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileFileNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Profiles == nil {
		f.Profiles = make(map[string]WeightProfile)
	}
	return &f, nil
}

// FindProfileFile searches for the profile file in the following order:
// 1. If explicit is specified, use it directly
// 2. Look for .leadlens in the current directory
// 3. Look for .leadlens in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindProfileFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultProfileFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultProfileFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// Profile resolves a named weight profile.
func (f *File) Profile(name string) (model.Weights, error) {
	p, ok := f.Profiles[name]
	if !ok {
		return model.Weights{}, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	return model.Weights{
		ICPFit:         p.ICPFit,
		Pain:           p.Pain,
		Reachability:   p.Reachability,
		ComplianceRisk: p.ComplianceRisk,
	}, nil
}
