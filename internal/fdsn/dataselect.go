package fdsn

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/seisworks/seisfetch/model"
)

// WaveformOptions maps download restrictions onto dataselect query
// parameters. The zero value requests the full window as-is.
type WaveformOptions struct {
	// MinimumLengthSeconds sets the service-side minimumlength parameter;
	// segments shorter than this are not returned.
	MinimumLengthSeconds float64

	// LongestOnly asks the service for only the longest continuous segment,
	// which drops gappy channels server-side.
	LongestOnly bool
}

// Waveform fetches miniSEED for a single record from the dataselect service
// rooted at root. ErrNoData means the channel has no data in the window,
// which the caller should treat as a skip, not a failure.
func (c *Client) Waveform(ctx context.Context, root string, rec model.Record, opts WaveformOptions) ([]byte, error) {
	return c.waveform(ctx, serviceURL(root, "dataselect"), rec, opts)
}

// WaveformFromService is Waveform against a full dataselect service URL, as
// handed out by the routing service.
func (c *Client) WaveformFromService(ctx context.Context, dataselectURL string, rec model.Record, opts WaveformOptions) ([]byte, error) {
	return c.waveform(ctx, queryURL(dataselectURL), rec, opts)
}

func (c *Client) waveform(ctx context.Context, endpoint string, rec model.Record, opts WaveformOptions) ([]byte, error) {
	loc := rec.Location
	if loc == "" {
		loc = "--"
	}
	params := url.Values{}
	params.Set("network", rec.Network)
	params.Set("station", rec.Station)
	params.Set("location", loc)
	params.Set("channel", rec.Channel)
	params.Set("starttime", rec.Start.UTC().Format("2006-01-02T15:04:05"))
	params.Set("endtime", rec.End.UTC().Format("2006-01-02T15:04:05"))
	if opts.MinimumLengthSeconds > 0 {
		params.Set("minimumlength", strconv.FormatFloat(opts.MinimumLengthSeconds, 'f', -1, 64))
	}
	if opts.LongestOnly {
		params.Set("longestonly", "true")
	}

	// Waveform payloads are never cached: windows differ per event and the
	// bodies dwarf the metadata responses.
	return c.getUncached(ctx, endpoint, params)
}

// FileTimeLayout is the timestamp format used in downloaded file names.
const FileTimeLayout = "20060102T150405Z"

// FormatFileTime renders a timestamp for use in waveform file names.
func FormatFileTime(t time.Time) string {
	return t.UTC().Format(FileTimeLayout)
}
