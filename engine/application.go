package engine

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/systems"
)

type InputConfig struct {
	// GeoJSON feature collection to extrude.
	Features string `toml:"features"`
	// Property holding the feature id. Empty uses the GeoJSON id.
	IDAttribute string `toml:"id_attribute"`
	// Coordinate system of the features: wgs84, utm:<zone><N|S> or local.
	SRS string `toml:"srs"`
	// TOML style sheet.
	Styles string `toml:"styles"`
	// Style applied to every feature. Empty picks the only style of the sheet.
	Style string `toml:"style"`
}

type OutputConfig struct {
	// Wavefront OBJ written after each pass. Empty writes nothing.
	Path string `toml:"path"`
}

type FilterConfig struct {
	Merge              *bool   `toml:"merge"`
	WallAngleThreshold float64 `toml:"wall_angle_threshold"`
	HeightOffset       string  `toml:"height_offset"`
	FeatureName        string  `toml:"feature_name"`
	Base               bool    `toml:"base"`
	Geocentric         bool    `toml:"geocentric"`
}

type JobsConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
	BatchSize int `toml:"batch_size"`
}

type ApplicationConfig struct {
	// The application name used in logs and reports.
	Name     string `toml:"name"`
	LogLevel string `toml:"log_level"`
	// Re-run the pass whenever the style sheet or the features change.
	Watch       bool         `toml:"watch"`
	Diagnostics int          `toml:"diagnostics"`
	Input       InputConfig  `toml:"input"`
	Output      OutputConfig `toml:"output"`
	Filter      FilterConfig `toml:"filter"`
	Jobs        JobsConfig   `toml:"jobs"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	c := &ApplicationConfig{}
	c.applyDefaults()
	return c
}

func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := DecodeApplicationConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func DecodeApplicationConfig(data []byte) (*ApplicationConfig, error) {
	c := &ApplicationConfig{}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return c, c.validate()
}

func (c *ApplicationConfig) applyDefaults() {
	if c.Name == "" {
		c.Name = "extruder"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Diagnostics <= 0 {
		c.Diagnostics = core.DefaultDiagnosticsCapacity
	}
	if c.Input.SRS == "" {
		c.Input.SRS = "wgs84"
	}
	if c.Filter.Merge == nil {
		merge := true
		c.Filter.Merge = &merge
	}
	if c.Filter.WallAngleThreshold <= 0 {
		c.Filter.WallAngleThreshold = systems.DefaultWallAngleThreshold
	}
	if c.Jobs.Workers <= 0 {
		c.Jobs.Workers = 4
	}
	if c.Jobs.BatchSize <= 0 {
		c.Jobs.BatchSize = systems.DefaultBatchSize
	}
}

func (c *ApplicationConfig) validate() error {
	if c.Jobs.QueueSize < 0 {
		return systems.ErrNegativeChannelSize
	}
	if c.Filter.WallAngleThreshold > 180 {
		return fmt.Errorf("wall_angle_threshold %.1f is above 180 degrees", c.Filter.WallAngleThreshold)
	}
	return nil
}

// FilterOptions turns the [filter] table into filter options.
func (c *ApplicationConfig) FilterOptions() []systems.FilterOption {
	opts := []systems.FilterOption{
		systems.WithMergeGeometry(*c.Filter.Merge),
		systems.WithWallAngleThreshold(c.Filter.WallAngleThreshold),
		systems.WithBase(c.Filter.Base),
	}
	if c.Filter.HeightOffset != "" {
		opts = append(opts, systems.WithHeightOffsetExpr(c.Filter.HeightOffset))
	}
	if c.Filter.FeatureName != "" {
		opts = append(opts, systems.WithFeatureNameExpr(c.Filter.FeatureName))
	}
	return opts
}
