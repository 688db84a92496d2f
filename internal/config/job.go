package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seisworks/seisfetch/core"
	"github.com/seisworks/seisfetch/internal/downloader"
)

// Duration wraps time.Duration for YAML scalars like "-1m" or "300s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Job describes one download campaign.
type Job struct {
	// Catalog is the path to the event catalog, CSV or QuakeML.
	Catalog string `yaml:"catalog"`

	// Model names the travel-time model, e.g. "iasp91".
	Model string `yaml:"model"`

	Window       WindowSpec       `yaml:"window"`
	Region       RegionSpec       `yaml:"region"`
	Restrictions RestrictionsSpec `yaml:"restrictions"`
	Storage      StorageSpec      `yaml:"storage"`
}

// WindowSpec mirrors core.WindowConfig in YAML-friendly form.
type WindowSpec struct {
	MinRadius   float64  `yaml:"min_radius"`
	MaxRadius   float64  `yaml:"max_radius"`
	RadiusStep  float64  `yaml:"radius_step"`
	StartPhases []string `yaml:"start_phases"`
	EndPhases   []string `yaml:"end_phases"`
	StartOffset Duration `yaml:"start_offset"`
	EndOffset   Duration `yaml:"end_offset"`
	Providers   []string `yaml:"providers"`
}

// RegionSpec optionally restricts the station search to a rectangle on top
// of the per-event circular bands. All four corners must be set for the
// rectangle to take effect.
type RegionSpec struct {
	MinLatitude  *float64 `yaml:"min_latitude"`
	MaxLatitude  *float64 `yaml:"max_latitude"`
	MinLongitude *float64 `yaml:"min_longitude"`
	MaxLongitude *float64 `yaml:"max_longitude"`
}

// RestrictionsSpec mirrors downloader.Restrictions minus the per-unit time
// window, which the planner supplies.
type RestrictionsSpec struct {
	Network                  string   `yaml:"network"`
	Station                  string   `yaml:"station"`
	Location                 string   `yaml:"location"`
	Channel                  string   `yaml:"channel"`
	ChannelPriorities        []string `yaml:"channel_priorities"`
	RejectGaps               bool     `yaml:"reject_gaps"`
	MinimumLengthFraction    float64  `yaml:"minimum_length"`
	MinInterstationDistanceM float64  `yaml:"min_interstation_distance_m"`
	ExcludeProviders         []string `yaml:"exclude_providers"`
}

// StorageSpec mirrors downloader.Storage.
type StorageSpec struct {
	Root              string `yaml:"root"`
	MSEEDPattern      string `yaml:"mseed_pattern"`
	StationXMLPattern string `yaml:"stationxml_pattern"`
}

// LoadJob reads and validates a job file. Unknown keys are rejected so a
// typo in a field name fails loudly instead of silently using a default.
func LoadJob(path string) (Job, error) {
	var job Job

	f, err := os.Open(path)
	if err != nil {
		return job, fmt.Errorf("config: opening job file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&job); err != nil {
		return job, fmt.Errorf("config: parsing job file %s: %w", path, err)
	}

	if job.Catalog == "" {
		return job, fmt.Errorf("config: job file %s does not name a catalog", path)
	}
	if job.Model == "" {
		job.Model = "iasp91"
	}
	return job, nil
}

// WindowConfig converts the window section for the planner.
func (j Job) WindowConfig() core.WindowConfig {
	return core.WindowConfig{
		MinRadius:      j.Window.MinRadius,
		MaxRadius:      j.Window.MaxRadius,
		RadiusStep:     j.Window.RadiusStep,
		StartRefPhases: j.Window.StartPhases,
		EndRefPhases:   j.Window.EndPhases,
		StartOffset:    time.Duration(j.Window.StartOffset),
		EndOffset:      time.Duration(j.Window.EndOffset),
		ModelName:      j.Model,
		Providers:      j.Window.Providers,
	}
}

// DownloadRestrictions converts the restrictions section; the caller fills
// the per-unit time window before use.
func (j Job) DownloadRestrictions() downloader.Restrictions {
	return downloader.Restrictions{
		Network:                      j.Restrictions.Network,
		Station:                      j.Restrictions.Station,
		Location:                     j.Restrictions.Location,
		Channel:                      j.Restrictions.Channel,
		ChannelPriorities:            j.Restrictions.ChannelPriorities,
		RejectChannelsWithGaps:       j.Restrictions.RejectGaps,
		MinimumLengthFraction:        j.Restrictions.MinimumLengthFraction,
		MinimumInterstationDistanceM: j.Restrictions.MinInterstationDistanceM,
		IncludeProviders:             j.Window.Providers,
		ExcludeProviders:             j.Restrictions.ExcludeProviders,
	}
}

// DownloadStorage converts the storage section.
func (j Job) DownloadStorage() downloader.Storage {
	return downloader.Storage{
		Root:              j.Storage.Root,
		MSEEDPattern:      j.Storage.MSEEDPattern,
		StationXMLPattern: j.Storage.StationXMLPattern,
	}
}

// UnitDomain combines the optional region rectangle with the circular band
// of one planned request unit. Without a region the unit's own domain is
// returned untouched.
func (j Job) UnitDomain(unit core.RequestUnit) *core.GeoDomain {
	r := j.Region
	if r.MinLatitude == nil || r.MaxLatitude == nil || r.MinLongitude == nil || r.MaxLongitude == nil {
		return unit.Domain
	}

	spec := core.DomainSpec{
		MinLatitude:  r.MinLatitude,
		MaxLatitude:  r.MaxLatitude,
		MinLongitude: r.MinLongitude,
		MaxLongitude: r.MaxLongitude,
	}
	if lat, lon, minRadius, maxRadius, ok := unit.Domain.Circle(); ok {
		spec.Latitude = core.Float(lat)
		spec.Longitude = core.Float(lon)
		spec.MinRadius = core.Float(minRadius)
		spec.MaxRadius = core.Float(maxRadius)
	}
	return core.NewGeoDomain(spec)
}
