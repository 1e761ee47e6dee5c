package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-triest/pkg/config"
	"github.com/dd0wney/cluso-triest/pkg/driver"
	"github.com/dd0wney/cluso-triest/pkg/logging"
	"github.com/dd0wney/cluso-triest/pkg/metrics"
	"github.com/dd0wney/cluso-triest/pkg/stream"
	"github.com/dd0wney/cluso-triest/pkg/triest"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("triest", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML run configuration")
	fs.String("variant", "", "estimator variant: base or improved")
	fs.Int("m", 0, "reservoir size (edges kept in memory)")
	fs.String("seed", "", "random seed (unsigned integer)")
	fs.String("file", "", "edge list file; .sz files are snappy-compressed")
	fs.String("s3", "", "edge list object, s3://bucket/key")
	fs.String("s3-region", "", "S3 region")
	fs.String("s3-endpoint", "", "S3-compatible endpoint URL")
	fs.Bool("s3-path-style", false, "use path-style S3 addressing")
	fs.String("listen", "", "NNG PULL address to receive edges on, e.g. tcp://127.0.0.1:9100")
	fs.String("metrics-addr", "", "serve Prometheus metrics on host:port")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.Int64("progress", -1, "log progress every N edges (0 disables)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := applyFlags(cfg, fs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger := logging.NewJSONLogger(os.Stderr, cfg.Level())
	logging.SetDefaultLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := execute(ctx, cfg, logger)
	if report != nil {
		fmt.Println(renderReport(report))
	}
	if err != nil {
		logger.Error("run failed", logging.Error(err))
		return 1
	}
	return 0
}

// applyFlags copies explicitly set flags over cfg. Any source flag replaces
// the configured source; giving two source flags fails validation.
func applyFlags(cfg *config.RunConfig, fs *flag.FlagSet) error {
	sourceFlag := false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "file", "s3", "listen":
			sourceFlag = true
		}
	})
	if sourceFlag {
		cfg.Source.Path, cfg.Source.S3URI, cfg.Source.Listen = "", "", ""
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		v := f.Value.String()
		switch f.Name {
		case "variant":
			cfg.Variant = v
		case "m":
			cfg.ReservoirSize, _ = strconv.Atoi(v)
		case "seed":
			seed, perr := strconv.ParseUint(v, 10, 64)
			if perr != nil {
				err = fmt.Errorf("-seed: %w", perr)
				return
			}
			cfg.Seed = &seed
		case "file":
			cfg.Source.Path = v
		case "s3":
			cfg.Source.S3URI = v
		case "s3-region":
			cfg.Source.S3Region = v
		case "s3-endpoint":
			cfg.Source.S3Endpoint = v
		case "s3-path-style":
			cfg.Source.S3PathStyle = v == "true"
		case "listen":
			cfg.Source.Listen = v
		case "metrics-addr":
			cfg.MetricsAddr = v
		case "log-level":
			cfg.LogLevel = v
		case "progress":
			cfg.ProgressEvery, _ = strconv.ParseInt(v, 10, 64)
		}
	})
	return err
}

func execute(ctx context.Context, cfg *config.RunConfig, logger logging.Logger) (*driver.Report, error) {
	var reg *metrics.Registry
	if cfg.MetricsAddr != "" {
		reg = metrics.DefaultRegistry()
		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	opts := []triest.Option{triest.WithLogger(logger)}
	if cfg.Seed != nil {
		opts = append(opts, triest.WithSeed(*cfg.Seed))
	}
	if reg != nil {
		opts = append(opts, triest.WithObserver(reg))
	}
	est, err := triest.New(cfg.EstimatorVariant(), cfg.ReservoirSize, opts...)
	if err != nil {
		return nil, err
	}

	src, err := openSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	runner := &driver.Runner{
		Estimator:     est,
		Source:        src,
		Logger:        logger,
		Metrics:       reg,
		ProgressEvery: cfg.ProgressEvery,
	}
	return runner.Run(ctx)
}

func openSource(ctx context.Context, cfg *config.RunConfig) (stream.Source, error) {
	switch cfg.SourceKind() {
	case "file":
		return stream.OpenFile(cfg.Source.Path)
	case "s3":
		bucket, key, err := stream.ParseS3URI(cfg.Source.S3URI)
		if err != nil {
			return nil, err
		}
		client, err := stream.NewS3Client(ctx, stream.S3Options{
			Region:       cfg.Source.S3Region,
			Endpoint:     cfg.Source.S3Endpoint,
			UsePathStyle: cfg.Source.S3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return stream.OpenS3(ctx, client, bucket, key)
	case "nng":
		return stream.ListenNNG(cfg.Source.Listen)
	}
	return nil, errors.New("no edge source configured")
}

func serveMetrics(addr string, reg *metrics.Registry, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", logging.Error(err))
		}
	}()
	return srv
}
