package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/tus/tus-client-go/pkg/retry"
	"github.com/tus/tus-client-go/pkg/speedtest"
	"github.com/tus/tus-client-go/pkg/store"
	"github.com/tus/tus-client-go/pkg/tusclient"
)

var (
	flagEndpoint    string
	flagChunkSize   int64
	flagMaxRetries  int
	flagRetryScale  string
	flagCooldown    float64
	flagStoreDir    string
	flagConfigPath  string
	flagDebug       bool
	flagMeasureETA  bool
	flagSpeedProbes []string
	flagHeaders     []string
)

// NewRootCmd builds the tus-upload command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tus-upload <file>",
		Short: "Upload a file using the tus resumable upload protocol",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpload,
	}

	root.Flags().StringVar(&flagEndpoint, "endpoint", "", "tus creation endpoint (required unless set in config.toml)")
	root.Flags().Int64Var(&flagChunkSize, "chunk-size", 0, "max bytes per PATCH chunk (default 6 MiB)")
	root.Flags().IntVar(&flagMaxRetries, "max-retries", 0, "max chunk-level retry attempts (default 5)")
	root.Flags().StringVar(&flagRetryScale, "retry-scale", "", "constant, linear, or exponential (default exponential)")
	root.Flags().Float64Var(&flagCooldown, "retry-cooldown", 0, "base retry wait in seconds")
	root.Flags().StringVar(&flagStoreDir, "store-dir", "", "directory for durable resume state (default: in-memory only)")
	root.Flags().StringVar(&flagConfigPath, "config", "", "path to config.toml (default ~/.config/tus-upload/config.toml)")
	root.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	root.Flags().BoolVar(&flagMeasureETA, "measure-speed", false, "probe upstream bandwidth before uploading, to seed the ETA")
	root.Flags().StringSliceVar(&flagSpeedProbes, "speed-probe-endpoint", nil, "endpoints used by --measure-speed")
	root.Flags().StringSliceVar(&flagHeaders, "header", nil, "extra request header, as Key:Value (repeatable)")

	return root
}

func runUpload(cmd *cobra.Command, args []string) error {
	runID := uuid.NewString()
	logger := newLogger(flagDebug).With("run_id", runID)

	configPath := flagConfigPath
	if configPath == "" {
		if p, err := DefaultConfigPath(); err == nil {
			configPath = p
		}
	}
	fileCfg, err := LoadFileConfig(configPath)
	if err != nil {
		return err
	}

	endpoint := firstNonEmpty(flagEndpoint, fileCfg.Endpoint)
	if endpoint == "" {
		return fmt.Errorf("no --endpoint given and none set in %s", configPath)
	}

	opts := tusclient.Options{
		Logger:                    logger,
		MaxChunkBytes:             firstNonZeroInt64(flagChunkSize, fileCfg.ChunkSizeBytes),
		MaxRetries:                firstNonZeroInt(flagMaxRetries, fileCfg.MaxRetries),
		RetryScale:                retry.Scale(firstNonEmpty(flagRetryScale, fileCfg.RetryScale)),
		FirstRetryCooldownSeconds: firstNonZeroFloat(flagCooldown, fileCfg.FirstRetryCooldown),
		ExtraHeaders:              parseHeaderFlags(flagHeaders),
	}

	storeDir := firstNonEmpty(flagStoreDir, fileCfg.StoreDir)
	if storeDir != "" {
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			return fmt.Errorf("creating store dir: %w", err)
		}
		opts.Store = store.NewFile(storeDir)
	}

	localFile, err := tusclient.OpenLocalFile(args[0])
	if err != nil {
		return err
	}
	defer localFile.Close()

	client, err := tusclient.NewClient(localFile, opts)
	if err != nil {
		return err
	}

	resumable, err := client.IsResumable(cmd.Context())
	if err != nil {
		return err
	}
	if resumable {
		logger.Info("resuming previously interrupted upload")
	}

	var probe tusclient.SpeedProbe
	if flagMeasureETA && len(flagSpeedProbes) > 0 {
		probe = speedtest.NewProber(flagSpeedProbes...)
	}

	bar := &progressBar{out: os.Stderr}

	params := tusclient.UploadParams{
		Observer:     bar,
		RetryHook:    sleepingRetryHook(logger),
		MeasureSpeed: flagMeasureETA,
		SpeedProbe:   probe,
	}

	ctx := context.Background()
	return client.Upload(ctx, endpoint, params)
}

// sleepingRetryHook is the CLI's default RetryHook: it actually blocks for
// wait, then resumes. A library caller embedding tusclient directly is
// free to supply something smarter (e.g. bounded by wall-clock budget).
func sleepingRetryHook(logger *slog.Logger) tusclient.RetryHook {
	return func(wait time.Duration, resume func() error) error {
		logger.Info("retrying after backoff", "wait", wait)
		time.Sleep(wait)
		return resume()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZeroInt64(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonZeroInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonZeroFloat(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func parseHeaderFlags(raw []string) http.Header {
	headers := http.Header{}
	for _, kv := range raw {
		parts := strings.SplitN(kv, ":", 2)
		if len(parts) != 2 {
			continue
		}
		headers.Add(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
	}
	return headers
}
