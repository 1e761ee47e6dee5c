package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dd0wney/cluso-triest/pkg/algorithms"
	"github.com/dd0wney/cluso-triest/pkg/experiment"
	"github.com/dd0wney/cluso-triest/pkg/logging"
	"github.com/dd0wney/cluso-triest/pkg/triest"
)

func main() {
	k := flag.Int("k", 10, "benchmark on the complete graph K_k")
	n := flag.Int("n", 0, "use a G(n,p) random graph with n vertices instead of K_k")
	p := flag.Float64("p", 0.1, "edge probability for -n")
	sizes := flag.String("sizes", "10,20,30,40", "comma-separated reservoir sizes")
	variant := flag.String("variant", "", "base or improved (default both)")
	trials := flag.Int("trials", 500, "trials per reservoir size")
	workers := flag.Int("workers", 0, "concurrent trials (0 = one per CPU)")
	seed := flag.Uint64("seed", 1, "base seed; trial i uses seed+i")
	flag.Parse()

	logger := logging.NewDefaultLogger()

	ms, err := parseSizes(*sizes)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	variants := triest.Variants()
	if *variant != "" {
		v, err := triest.ParseVariant(*variant)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		variants = []triest.Variant{v}
	}

	var edges []triest.Edge
	graph := fmt.Sprintf("K_%d", *k)
	if *n > 0 {
		edges = algorithms.RandomGraph(*n, *p, *seed)
		graph = fmt.Sprintf("G(%d, %.3g)", *n, *p)
	} else {
		edges = algorithms.CompleteGraph(*k)
		algorithms.Shuffle(edges, *seed)
	}
	truth := algorithms.CountTrianglesGlobal(edges)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var summaries []*experiment.Summary
	for _, v := range variants {
		out, err := experiment.Sweep(ctx, experiment.Config{
			Variant:  v,
			Trials:   *trials,
			Workers:  *workers,
			BaseSeed: *seed,
			Logger:   logger,
		}, ms, edges, truth)
		if err != nil {
			logger.Error("sweep failed", logging.Variant(string(v)), logging.Error(err))
			os.Exit(1)
		}
		summaries = append(summaries, out...)
	}

	fmt.Println(renderTable(graph, len(edges), truth, summaries))
}

func parseSizes(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid reservoir size %q: %w", part, err)
		}
		if m < triest.MinReservoirSize {
			return nil, fmt.Errorf("reservoir size %d is below %d", m, triest.MinReservoirSize)
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no reservoir sizes given")
	}
	return out, nil
}
