package downloader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seisworks/seisfetch/internal/fdsn"
	"github.com/seisworks/seisfetch/model"
)

// Default file layouts, one miniSEED file per record and one StationXML
// file per station, grouped under the event they belong to.
const (
	DefaultMSEEDPattern      = "mseed/{eventid}/{network}.{station}.{location}.{channel}__{starttime}__{endtime}.mseed"
	DefaultStationXMLPattern = "stations/{eventid}/{network}.{station}.xml"
)

// Storage decides where downloaded files land. Patterns are relative to
// Root and may use the placeholders {eventid}, {network}, {station},
// {location}, {channel}, {starttime}, and {endtime}.
type Storage struct {
	Root              string
	MSEEDPattern      string
	StationXMLPattern string
}

// Sanitize fills defaults for unset fields.
func (s Storage) Sanitize() Storage {
	if s.Root == "" {
		s.Root = "."
	}
	if s.MSEEDPattern == "" {
		s.MSEEDPattern = DefaultMSEEDPattern
	}
	if s.StationXMLPattern == "" {
		s.StationXMLPattern = DefaultStationXMLPattern
	}
	return s
}

// WaveformPath renders the miniSEED path for one record.
func (s Storage) WaveformPath(eventID string, rec model.Record) string {
	name := strings.NewReplacer(
		"{eventid}", eventID,
		"{network}", rec.Network,
		"{station}", rec.Station,
		"{location}", rec.Location,
		"{channel}", rec.Channel,
		"{starttime}", fdsn.FormatFileTime(rec.Start),
		"{endtime}", fdsn.FormatFileTime(rec.End),
	).Replace(s.MSEEDPattern)
	return filepath.Join(s.Root, filepath.FromSlash(name))
}

// StationXMLPath renders the metadata path for one station.
func (s Storage) StationXMLPath(eventID, network, station string) string {
	name := strings.NewReplacer(
		"{eventid}", eventID,
		"{network}", network,
		"{station}", station,
	).Replace(s.StationXMLPattern)
	return filepath.Join(s.Root, filepath.FromSlash(name))
}

// writeFile writes data, creating parent directories as needed.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("downloader: creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("downloader: writing %s: %w", path, err)
	}
	return nil
}
