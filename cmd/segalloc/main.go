// Command segalloc simulates a first-fit-by-size memory allocator.
//
// Without arguments it reads one script from stdin and writes the responses
// to stdout. With file arguments it processes every input file concurrently,
// writing <input>.out next to each.
//
// The input format is whitespace-separated integers: memory size, query
// count, then one value per query (positive: allocate that many addresses,
// negative: free the |value|-th earlier query). Output is one line per
// allocation query: the granted address or -1.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/segalloc/segalloc"
	"github.com/segalloc/segalloc/script"
	"github.com/segalloc/segalloc/trace"
)

type config struct {
	compression trace.Compression
	logger      *segalloc.Logger
	utilization bool
}

func main() {
	tracePath := flag.String("trace", "", "journal applied queries to this file (with file arguments: <input>.trace)")
	compression := flag.String("compression", "none", "trace compression: none, lz4 or zstd")
	logLevel := flag.String("log-level", "off", "log level: debug, info, warn, error or off")
	utilization := flag.Bool("utilization", false, "report final utilization on stderr")
	flag.Parse()

	cfg, err := buildConfig(*compression, *logLevel, *utilization)
	if err != nil {
		fatal(err)
	}

	if flag.NArg() == 0 {
		if err := process(os.Stdin, os.Stdout, *tracePath, cfg); err != nil {
			fatal(err)
		}
		return
	}

	var g errgroup.Group
	for _, path := range flag.Args() {
		g.Go(func() error {
			tp := ""
			if *tracePath != "" {
				tp = path + ".trace"
			}
			if err := processFile(path, tp, cfg); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fatal(err)
	}
}

func buildConfig(compression, logLevel string, utilization bool) (config, error) {
	cfg := config{utilization: utilization}

	switch compression {
	case "none":
		cfg.compression = trace.CompressionNone
	case "lz4":
		cfg.compression = trace.CompressionLZ4
	case "zstd":
		cfg.compression = trace.CompressionZstd
	default:
		return cfg, fmt.Errorf("unknown compression %q", compression)
	}

	switch logLevel {
	case "off":
		cfg.logger = segalloc.NoopLogger()
	case "debug":
		cfg.logger = segalloc.NewTextLogger(slog.LevelDebug)
	case "info":
		cfg.logger = segalloc.NewTextLogger(slog.LevelInfo)
	case "warn":
		cfg.logger = segalloc.NewTextLogger(slog.LevelWarn)
	case "error":
		cfg.logger = segalloc.NewTextLogger(slog.LevelError)
	default:
		return cfg, fmt.Errorf("unknown log level %q", logLevel)
	}

	return cfg, nil
}

func processFile(inPath, tracePath string, cfg config) error {
	in, err := os.Open(inPath) //nolint:gosec // G304: path comes from argv
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(inPath + ".out") //nolint:gosec // G304: path comes from argv
	if err != nil {
		return err
	}

	if err := process(in, out, tracePath, cfg); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func process(r io.Reader, w io.Writer, tracePath string, cfg config) error {
	memorySize, queries, err := script.Parse(r)
	if err != nil {
		return err
	}

	opts := []segalloc.Option{segalloc.WithLogger(cfg.logger)}
	if cfg.utilization {
		opts = append(opts, segalloc.WithOccupancy())
	}

	var tw *trace.Writer
	if tracePath != "" {
		tw, err = trace.NewWriter(tracePath, memorySize, func(o *trace.Options) {
			o.Compression = cfg.compression
		})
		if err != nil {
			return err
		}
		opts = append(opts, segalloc.WithTracer(tw))
	}

	sim, err := segalloc.New(memorySize, opts...)
	if err != nil {
		return err
	}

	responses, err := sim.Run(queries)
	if err != nil {
		return err
	}
	if err := script.WriteResponses(w, responses); err != nil {
		return err
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			return err
		}
	}

	if cfg.utilization {
		occ := sim.Occupancy()
		fmt.Fprintf(os.Stderr, "utilization: %.1f%% (%d of %d addresses)\n",
			occ.Utilization()*100, occ.AllocatedCount(), memorySize)
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "segalloc:", err)
	os.Exit(1)
}
