package utils

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// ─── Run mode ───────────────────────────────────────────────────────────

// Mode selects which bridge/pipeline the runner drives. Resolved once at
// startup from the config's mode string; the variants are closed.
type Mode int

const (
	ModeROS1 Mode = iota
	ModeROS2
	ModeSDG
)

var modeNames = map[string]Mode{
	"ros1": ModeROS1,
	"ros2": ModeROS2,
	"sdg":  ModeSDG,
}

func (m Mode) String() string {
	switch m {
	case ModeROS1:
		return "ros1"
	case ModeROS2:
		return "ros2"
	case ModeSDG:
		return "sdg"
	}
	return "unknown"
}

// ParseMode maps a config mode string to its Mode.
func ParseMode(s string) (Mode, error) {
	if m, ok := modeNames[s]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want ros1, ros2 or sdg)", s)
}

// ─── Per-mode configs ───────────────────────────────────────────────────

// ROS1Config carries the ROS1 bridge selection. The bridge itself is an
// external collaborator; only the name is consumed here.
type ROS1Config struct {
	BridgeName string `yaml:"bridge_name"`
}

// ROS2Config carries the ROS2 domain id. DomainID is inert configuration:
// it is parsed and logged but gates nothing in this runner.
type ROS2Config struct {
	DomainID int `yaml:"domain_id"`
}

// CameraSettings describes a camera to create when a requested name has
// no match in the scene. Matched to camera_name entries by the path base.
type CameraSettings struct {
	CameraPath         string    `yaml:"camera_path"`
	FocalLength        float64   `yaml:"focal_length"`        // mm
	HorizontalAperture float64   `yaml:"horizontal_aperture"` // mm
	VerticalAperture   float64   `yaml:"vertical_aperture"`   // accepted, ignored: recomputed from resolution aspect
	FStop              float64   `yaml:"fstop"`               // 0 disables depth of field
	FocusDistance      float64   `yaml:"focus_distance"`      // not applied when fstop is 0
	ClippingRange      []float64 `yaml:"clipping_range"`      // [near, far]
}

// Name returns the camera name the settings entry applies to.
func (s CameraSettings) Name() string {
	return path.Base(s.CameraPath)
}

// SDGConfig is the synthetic-data-generation session configuration.
// The five per-camera lists are positional: index i of each describes
// camera_name[i]. Length checks live in the binding controller.
type SDGConfig struct {
	NumImages         int              `yaml:"num_images"`
	PrimPath          string           `yaml:"prim_path"`
	CameraNames       []string         `yaml:"camera_name"`
	CameraResolutions [][]int          `yaml:"camera_resolution"` // [w, h] pairs
	DataDir           string           `yaml:"data_dir"`
	AnnotatorLists    [][]string       `yaml:"annotator_list"`
	ImageFormats      []string         `yaml:"image_format"`
	AnnotFormats      []string         `yaml:"annot_format"`
	ElementPerFolder  int              `yaml:"element_per_folder"`
	CameraSettings    []CameraSettings `yaml:"camera_settings"`
}

type SimulationConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RunConfig is the top-level structure for run.yaml.
type RunConfig struct {
	Mode       string           `yaml:"mode"`
	ROS1       ROS1Config       `yaml:"ros1"`
	ROS2       ROS2Config       `yaml:"ros2"`
	SDG        SDGConfig        `yaml:"sdg"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// ─── Loader ─────────────────────────────────────────────────────────────

// LoadRunConfig reads and parses run.yaml, then validates it.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run config: %w", err)
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse run config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate run config: %w", err)
	}
	return &cfg, nil
}

// ModeKind returns the resolved mode variant. Valid after Validate.
func (c *RunConfig) ModeKind() Mode {
	m, _ := ParseMode(c.Mode)
	return m
}

// Validate checks mode and the scalar SDG invariants. Cross-list length
// checks are deliberately left to the binding controller, which reports
// them as configuration mismatches before any capture starts.
func (c *RunConfig) Validate() error {
	mode, err := ParseMode(c.Mode)
	if err != nil {
		return err
	}
	if mode != ModeSDG {
		return nil
	}

	s := &c.SDG
	if s.NumImages < 1 {
		return fmt.Errorf("num_images must be positive, got %d", s.NumImages)
	}
	if s.ElementPerFolder < 1 {
		return fmt.Errorf("element_per_folder must be positive, got %d", s.ElementPerFolder)
	}
	if s.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if s.PrimPath == "" {
		return fmt.Errorf("prim_path must not be empty")
	}
	if len(s.CameraNames) == 0 {
		return fmt.Errorf("camera_name must list at least one camera")
	}
	return nil
}
