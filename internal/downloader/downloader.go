package downloader

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/seisworks/seisfetch/core"
	"github.com/seisworks/seisfetch/internal/fdsn"
	"github.com/seisworks/seisfetch/internal/logging"
	"github.com/seisworks/seisfetch/internal/observability"
	"github.com/seisworks/seisfetch/model"
)

const defaultWorkers = 4

// Stats summarises one download batch.
type Stats struct {
	Routed     int   // records offered by the routing service
	Kept       int   // records surviving domain, priority, and distance filters
	Downloaded int   // miniSEED files written
	NoData     int   // records the service had no data for
	Failed     int   // records that errored
	StationXML int   // metadata files written
	Bytes      int64 // miniSEED bytes written
}

// Downloader fetches the waveforms of one request unit.
type Downloader struct {
	client          *fdsn.Client
	log             logging.Logger
	metrics         *observability.Collector
	workers         int
	routingEndpoint string
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithLogger attaches a structured logger.
func WithLogger(log logging.Logger) Option {
	return func(d *Downloader) { d.log = log }
}

// WithMetrics attaches the pipeline metrics collector.
func WithMetrics(m *observability.Collector) Option {
	return func(d *Downloader) { d.metrics = m }
}

// WithWorkers bounds the waveform fetch concurrency.
func WithWorkers(n int) Option {
	return func(d *Downloader) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithRoutingEndpoint overrides the federator URL, mainly for tests.
func WithRoutingEndpoint(endpoint string) Option {
	return func(d *Downloader) { d.routingEndpoint = endpoint }
}

// New constructs a Downloader on top of an FDSN client.
func New(client *fdsn.Client, opts ...Option) *Downloader {
	d := &Downloader{
		client:  client,
		log:     logging.Noop(),
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// job pairs a record with the datacenter that serves it.
type job struct {
	rec           model.Record
	datacenter    string
	dataselectURL string
}

// Download routes the channel query, filters the results against the
// domain and restrictions, and fetches the surviving records. An empty
// result is not an error: a batch where nothing matches simply writes no
// files.
func (d *Downloader) Download(ctx context.Context, domain *core.GeoDomain, r Restrictions, st Storage, eventID string) (Stats, error) {
	var stats Stats

	r, err := r.Sanitize()
	if err != nil {
		return stats, err
	}
	st = st.Sanitize()

	batchID := uuid.NewString()
	ctx, log := logging.WithBatchLogger(ctx, d.log, batchID)
	ctx, span := observability.StartSpan(ctx, "downloader.download",
		attribute.String("event_id", eventID),
		attribute.String("batch_id", batchID),
	)
	defer span.End()

	routes, err := d.routes(ctx, log, domain, r)
	if err != nil {
		if errors.Is(err, fdsn.ErrNoData) {
			log.Info(ctx, "no channels match the routing query", logging.String("event_id", eventID))
			return stats, nil
		}
		return stats, err
	}

	jobs := d.collectJobs(ctx, log, domain, r, routes, &stats)
	if d.metrics != nil {
		d.metrics.SetChannelsKept(stats.Kept)
	}
	if len(jobs) == 0 {
		log.Info(ctx, "nothing to download after filtering",
			logging.String("event_id", eventID),
			logging.Int("routed", stats.Routed),
		)
		return stats, nil
	}

	d.fetchStationXML(ctx, log, routes, jobs, st, eventID, &stats)
	d.fetchWaveforms(ctx, log, r, st, eventID, jobs, &stats)

	log.Info(ctx, "download batch finished",
		logging.String("event_id", eventID),
		logging.Int("routed", stats.Routed),
		logging.Int("kept", stats.Kept),
		logging.Int("downloaded", stats.Downloaded),
		logging.Int("nodata", stats.NoData),
		logging.Int("failed", stats.Failed),
		logging.Any("bytes", stats.Bytes),
	)
	return stats, nil
}

// routes asks the federator which datacenters hold matching channels and
// attaches station coordinates from each datacenter's station service.
func (d *Downloader) routes(ctx context.Context, log logging.Logger, domain *core.GeoDomain, r Restrictions) ([]fdsn.Route, error) {
	routes, err := d.client.AvailableChannels(ctx, d.routingEndpoint, fdsn.RoutingQuery{
		Network:          r.Network,
		Station:          r.Station,
		Location:         r.Location,
		Channel:          r.Channel,
		Start:            r.Start.UTC().Format("2006-01-02T15:04:05"),
		End:              r.End.UTC().Format("2006-01-02T15:04:05"),
		IncludeProviders: r.IncludeProviders,
		ExcludeProviders: r.ExcludeProviders,
	})
	if err != nil {
		return nil, err
	}

	var channels []model.Channel
	for _, route := range routes {
		if route.StationURL == "" {
			continue
		}
		ch, err := d.client.ChannelsFromService(ctx, route.StationURL, fdsn.StationQuery{
			Domain: domain.QueryParameters(),
			Start:  r.Start,
			End:    r.End,
		})
		if err != nil {
			if errors.Is(err, fdsn.ErrNoData) {
				continue
			}
			log.Warn(ctx, "station metadata query failed",
				logging.String("datacenter", route.Datacenter),
				logging.Err(err),
			)
			continue
		}
		channels = append(channels, ch...)
	}
	fdsn.AttachCoordinates(routes, channels)
	return routes, nil
}

// collectJobs flattens the routed records into fetch jobs, applying the
// domain post-filter, channel priorities, and interstation thinning. The
// record windows are normalised to the restriction window so every file of
// a batch covers the same span.
func (d *Downloader) collectJobs(ctx context.Context, log logging.Logger, domain *core.GeoDomain, r Restrictions, routes []fdsn.Route, stats *Stats) []job {
	serving := make(map[string]fdsn.Route)
	var records []model.Record
	for _, route := range routes {
		stats.Routed += len(route.Records)
		for _, rec := range route.Records {
			if !rec.Located {
				log.Debug(ctx, "dropping record without station coordinates",
					logging.String("record", rec.String()),
				)
				continue
			}
			if !domain.IsInDomain(rec.Latitude, rec.Longitude) {
				continue
			}
			rec.Start, rec.End = r.Start, r.End
			records = append(records, rec)
			serving[rec.Network+"."+rec.Station] = route
		}
	}

	records = selectChannels(records, r.ChannelPriorities)
	records = thinStations(records, r.MinimumInterstationDistanceM)
	stats.Kept = len(records)

	jobs := make([]job, 0, len(records))
	for _, rec := range records {
		route := serving[rec.Network+"."+rec.Station]
		jobs = append(jobs, job{rec: rec, datacenter: route.Datacenter, dataselectURL: route.DataselectURL})
	}
	return jobs
}

// fetchStationXML saves response-level metadata once per station.
func (d *Downloader) fetchStationXML(ctx context.Context, log logging.Logger, routes []fdsn.Route, jobs []job, st Storage, eventID string, stats *Stats) {
	stationURLs := make(map[string]string, len(routes))
	for _, route := range routes {
		stationURLs[route.Datacenter] = route.StationURL
	}

	seen := make(map[string]bool)
	for _, j := range jobs {
		key := j.rec.Network + "." + j.rec.Station
		if seen[key] {
			continue
		}
		seen[key] = true

		stationURL := stationURLs[j.datacenter]
		if stationURL == "" {
			continue
		}
		body, err := d.client.StationXMLFromService(ctx, stationURL, j.rec.Network, j.rec.Station)
		if err != nil {
			log.Warn(ctx, "station metadata download failed",
				logging.String("station", key),
				logging.Err(err),
			)
			continue
		}
		path := st.StationXMLPath(eventID, j.rec.Network, j.rec.Station)
		if err := writeFile(path, body); err != nil {
			log.Warn(ctx, "station metadata write failed", logging.Err(err))
			continue
		}
		stats.StationXML++
	}
}

// fetchWaveforms runs the per-record downloads through the worker pool.
func (d *Downloader) fetchWaveforms(ctx context.Context, log logging.Logger, r Restrictions, st Storage, eventID string, jobs []job, stats *Stats) {
	opts := fdsn.WaveformOptions{
		MinimumLengthSeconds: r.MinimumLengthFraction * r.WindowSeconds(),
		LongestOnly:          r.RejectChannelsWithGaps,
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	queue := make(chan job)

	workers := d.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				began := time.Now()
				data, err := d.client.WaveformFromService(ctx, j.dataselectURL, j.rec, opts)
				elapsed := time.Since(began)

				mu.Lock()
				switch {
				case errors.Is(err, fdsn.ErrNoData):
					stats.NoData++
					d.observe(j.datacenter, "nodata", elapsed)
				case err != nil:
					stats.Failed++
					d.observe(j.datacenter, "error", elapsed)
					if d.metrics != nil {
						d.metrics.RecordFailed(j.datacenter)
					}
					log.Warn(ctx, "waveform download failed",
						logging.String("record", j.rec.String()),
						logging.Err(err),
					)
				default:
					path := st.WaveformPath(eventID, j.rec)
					if werr := writeFile(path, data); werr != nil {
						stats.Failed++
						log.Warn(ctx, "waveform write failed", logging.Err(werr))
					} else {
						stats.Downloaded++
						stats.Bytes += int64(len(data))
						if d.metrics != nil {
							d.metrics.AddBytes(j.datacenter, len(data))
						}
					}
					d.observe(j.datacenter, "ok", elapsed)
				}
				mu.Unlock()
			}
		}()
	}

	for _, j := range jobs {
		queue <- j
	}
	close(queue)
	wg.Wait()
}

func (d *Downloader) observe(datacenter, outcome string, elapsed time.Duration) {
	if d.metrics != nil {
		d.metrics.ObserveRequest(datacenter, "dataselect", outcome, elapsed)
	}
}
