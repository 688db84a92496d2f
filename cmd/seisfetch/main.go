package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seisworks/seisfetch/internal/cache"
	"github.com/seisworks/seisfetch/internal/config"
	"github.com/seisworks/seisfetch/internal/fdsn"
	"github.com/seisworks/seisfetch/internal/logging"
	"github.com/seisworks/seisfetch/taup"
)

var (
	cfg config.Config
	log logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "seisfetch",
	Short: "Plan and download event waveforms from FDSN datacenters",
	Long: "seisfetch reads an event catalog, derives per-distance request windows " +
		"from travel-time curves, and downloads the matching waveforms and station " +
		"metadata from federated FDSN datacenters.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		log = logging.New(logging.Config{
			Level:     cfg.LogLevel,
			Format:    cfg.LogFormat,
			AddSource: cfg.LogSource,
		})
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newFDSNClient builds the shared service client, wiring in the Redis
// response cache when configured. The returned closer releases the cache
// connection.
func newFDSNClient() (*fdsn.Client, func()) {
	opts := []fdsn.Option{fdsn.WithTimeout(cfg.HTTPTimeout)}

	if rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rc != nil {
		opts = append(opts, fdsn.WithCache(rc, cfg.CacheTTL))
		return fdsn.NewClient(opts...), func() { _ = rc.Close() }
	}
	return fdsn.NewClient(opts...), func() {}
}

// travelTimeModel resolves the model named by the job. Only the embedded
// iasp91 tables ship with the binary for now.
func travelTimeModel(name string) (*taup.Model, error) {
	if name != "" && name != "iasp91" {
		return nil, fmt.Errorf("unknown travel-time model %q (only iasp91 is bundled)", name)
	}
	return taup.Default()
}
