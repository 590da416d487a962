// Package profiles manages named capture profiles stored in TOML.
// A profile binds a device path to the negotiation parameters used when
// the capture monitor starts a session on it.
package profiles

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/camdrv/pkg/linuxav/v4l2"
)

// Profile represents a single capture profile.
type Profile struct {
	ID          string `toml:"id" json:"id"`
	Device      string `toml:"device" json:"device"`
	Enabled     bool   `toml:"enabled" json:"enabled"`
	Width       int    `toml:"width,omitempty" json:"width,omitempty"`
	Height      int    `toml:"height,omitempty" json:"height,omitempty"`
	Format      string `toml:"format,omitempty" json:"format,omitempty"`
	IntervalNum int    `toml:"interval_num,omitempty" json:"interval_num,omitempty"`
	IntervalDen int    `toml:"interval_den,omitempty" json:"interval_den,omitempty"`
	Field       string `toml:"field,omitempty" json:"field,omitempty"`
	Buffers     int    `toml:"buffers,omitempty" json:"buffers,omitempty"`
}

// fileFormat is the on-disk shape of the profiles file.
type fileFormat struct {
	Version  int                `toml:"version" json:"version"`
	Profiles map[string]Profile `toml:"profiles" json:"profiles"`
}

// Store manages capture profiles backed by a TOML file.
type Store struct {
	path   string
	config *fileFormat
}

// NewStore creates a store for the given path.
func NewStore(path string) *Store {
	if path == "" {
		path = "profiles.toml"
	}

	return &Store{
		path: path,
		config: &fileFormat{
			Version:  1,
			Profiles: make(map[string]Profile),
		},
	}
}

// Load reads the profiles file. A missing file yields an empty store.
func (s *Store) Load() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read profiles: %w", err)
	}

	if err := toml.Unmarshal(data, s.config); err != nil {
		return fmt.Errorf("failed to parse profiles: %w", err)
	}

	if s.config.Profiles == nil {
		s.config.Profiles = make(map[string]Profile)
	}
	if s.config.Version == 0 {
		s.config.Version = 1
	}

	// The map key is authoritative for the ID.
	for id, p := range s.config.Profiles {
		if p.ID == "" {
			p.ID = id
			s.config.Profiles[id] = p
		}
	}

	return nil
}

// Save writes the profiles file, creating the directory if needed.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create profiles directory: %w", err)
	}

	data, err := toml.Marshal(s.config)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}

	return nil
}

// Add validates and stores a profile.
func (s *Store) Add(p Profile) error {
	if err := Validate(p); err != nil {
		return err
	}
	s.config.Profiles[p.ID] = p
	return s.Save()
}

// Remove deletes a profile by ID.
func (s *Store) Remove(id string) error {
	if _, exists := s.config.Profiles[id]; !exists {
		return fmt.Errorf("profile %s not found", id)
	}
	delete(s.config.Profiles, id)
	return s.Save()
}

// Get retrieves a profile by ID.
func (s *Store) Get(id string) (Profile, bool) {
	p, exists := s.config.Profiles[id]
	return p, exists
}

// All returns every profile.
func (s *Store) All() map[string]Profile {
	return s.config.Profiles
}

// Enabled returns only enabled profiles.
func (s *Store) Enabled() map[string]Profile {
	enabled := make(map[string]Profile)
	for id, p := range s.config.Profiles {
		if p.Enabled {
			enabled[id] = p
		}
	}
	return enabled
}

// Validate checks a profile for inconsistencies that would fail at
// session start anyway.
func Validate(p Profile) error {
	if p.ID == "" {
		return fmt.Errorf("profile ID cannot be empty")
	}
	if p.Device == "" {
		return fmt.Errorf("profile %s: device cannot be empty", p.ID)
	}
	if p.Format != "" && len(p.Format) != 4 {
		return fmt.Errorf("profile %s: format %q is not a FourCC", p.ID, p.Format)
	}
	if (p.Width == 0) != (p.Height == 0) {
		return fmt.Errorf("profile %s: width and height must be set together", p.ID)
	}
	if (p.IntervalNum == 0) != (p.IntervalDen == 0) {
		return fmt.Errorf("profile %s: interval numerator and denominator must be set together", p.ID)
	}
	if p.Field != "" {
		if _, err := parseField(p.Field); err != nil {
			return fmt.Errorf("profile %s: %w", p.ID, err)
		}
	}
	return nil
}

// CaptureConfig converts a profile to negotiation parameters. Unset
// fields fall back to the capture defaults.
func (p Profile) CaptureConfig() (v4l2.Config, error) {
	cfg := v4l2.DefaultConfig()

	if p.Width != 0 {
		cfg.Width = uint32(p.Width)
		cfg.Height = uint32(p.Height)
	}
	if p.Format != "" {
		cfg.Format = p.Format
	}
	if p.IntervalDen != 0 {
		cfg.Interval = v4l2.Fract{Numerator: uint32(p.IntervalNum), Denominator: uint32(p.IntervalDen)}
	}
	if p.Field != "" {
		field, err := parseField(p.Field)
		if err != nil {
			return v4l2.Config{}, err
		}
		cfg.Field = field
	}
	if p.Buffers != 0 {
		cfg.Buffers = uint32(p.Buffers)
	}

	return cfg, nil
}

// parseField maps the TOML field names to interlace orders.
func parseField(name string) (v4l2.Field, error) {
	switch name {
	case "none":
		return v4l2.FieldNone, nil
	case "top":
		return v4l2.FieldTop, nil
	case "bottom":
		return v4l2.FieldBottom, nil
	case "interlaced":
		return v4l2.FieldInterlaced, nil
	case "seq-tb":
		return v4l2.FieldSeqTB, nil
	case "seq-bt":
		return v4l2.FieldSeqBT, nil
	case "alternate":
		return v4l2.FieldAlternate, nil
	case "interlaced-tb":
		return v4l2.FieldInterlacedTB, nil
	case "interlaced-bt":
		return v4l2.FieldInterlacedBT, nil
	default:
		return 0, fmt.Errorf("unknown field order %q", name)
	}
}
