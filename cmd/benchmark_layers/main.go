package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/delaneyj/propertyparty/property"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	repeatsKey = "repeats"
	strictKey  = "strict"
	onlyKey    = "only"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark_layers",
		Usage: "Run layered random graphs of computed properties",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  repeatsKey,
				Usage: "Timed repeats per config; the best one is reported",
				Value: 5,
			},
			&cli.BoolFlag{
				Name:  strictKey,
				Usage: "Verify every evaluator only reads declared dependencies",
			},
			&cli.StringFlag{
				Name:  onlyKey,
				Usage: "Only run the config with this name",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("benchmark failed", "error", err)
		os.Exit(1)
	}
}

var perfTestCfgs = []benchmarkTestConfig{
	{
		name:           "simple component",
		width:          10,
		staticFraction: 1,
		nSources:       2,
		totalLayers:    5,
		readFraction:   0.2,
		iterations:     600000,
	},
	{
		name:           "dynamic component",
		width:          10,
		totalLayers:    10,
		staticFraction: 0.75,
		nSources:       6,
		readFraction:   0.2,
		iterations:     15000,
	},
	{
		name:           "large web app",
		width:          1000,
		totalLayers:    12,
		staticFraction: 0.95,
		nSources:       4,
		readFraction:   1,
		iterations:     7000,
	},
	{
		name:           "wide dense",
		width:          1000,
		totalLayers:    5,
		staticFraction: 1,
		nSources:       25,
		readFraction:   1,
		iterations:     3000,
	},
	{
		name:           "deep",
		width:          5,
		totalLayers:    500,
		staticFraction: 1,
		nSources:       3,
		readFraction:   1,
		iterations:     500,
	},
	{
		name:           "very dynamic",
		width:          100,
		totalLayers:    15,
		staticFraction: 0.5,
		nSources:       6,
		readFraction:   1,
		iterations:     2000,
	},
}

type results struct {
	sum      int
	count    int64
	duration time.Duration
	stats    property.Stats
}

func run(ctx context.Context, cmd *cli.Command) error {
	slog.Info("starting layered benchmark, please wait...")
	defer slog.Info("finished layered benchmark")

	testRepeats := int(cmd.Uint(repeatsKey))
	strict := cmd.Bool(strictKey)
	only := cmd.String(onlyKey)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"size", "nSources", "read%", "static%",
		"nTimes", "test", "time", "evaluations",
		"updateRate", "title",
	})

	for _, cfg := range perfTestCfgs {
		if only != "" && cfg.name != only {
			continue
		}
		slog.Info("running config", "name", cfg.name)

		counter := new(int64)
		tbl := property.NewTable(property.WithStrictReads(strict), property.WithName(cfg.name))
		var graph *benchmarkGraph
		scope := tbl.RunInScope(func() {
			graph = benchmarkMakeGraph(tbl, &benchmarkMakeGraphConfig{
				counter:        counter,
				width:          cfg.width,
				totalLayers:    cfg.totalLayers,
				nSources:       cfg.nSources,
				staticFraction: cfg.staticFraction,
			})
		})

		runOnce := func() int {
			return benchmarkRunGraph(&benchmarkRunGraphConfig{
				graph:        graph,
				iteration:    cfg.iterations,
				readFraction: cfg.readFraction,
			})
		}
		// warm up
		runOnce()

		best := &results{duration: time.Hour}
		for i := 0; i < testRepeats; i++ {
			slog.Info("repeat", "name", cfg.name, "n", i+1, "of", testRepeats)
			*counter = 0
			before := tbl.Stats()
			start := time.Now()
			sum := runOnce()
			duration := time.Since(start)

			if duration < best.duration {
				after := tbl.Stats()
				best = &results{
					sum:      sum,
					count:    *counter,
					duration: duration,
					stats: property.Stats{
						Cells:       after.Cells,
						Evaluations: after.Evaluations - before.Evaluations,
						DirtyMarks:  after.DirtyMarks - before.DirtyMarks,
					},
				}
			}
		}

		if err := scope.Drop(); err != nil {
			return err
		}
		if err := tbl.Check(); err != nil {
			return fmt.Errorf("%s: %w", cfg.name, err)
		}
		if tbl.Len() != 0 {
			return fmt.Errorf("%s: %d cells leaked", cfg.name, tbl.Len())
		}

		updateRate := float64(best.count) / (float64(best.duration) / float64(time.Millisecond))
		table.Append([]string{
			fmt.Sprintf("%dx%d", cfg.width, cfg.totalLayers),
			fmt.Sprint(cfg.nSources),
			fmt.Sprint(cfg.readFraction),
			fmt.Sprint(cfg.staticFraction),
			humanize.Comma(cfg.iterations),
			cfg.name,
			fmt.Sprint(best.duration),
			humanize.Comma(int64(best.stats.Evaluations)),
			humanize.Comma(int64(updateRate)),
			cfg.title(),
		})
	}
	table.Render()
	return nil
}

type benchmarkTestConfig struct {
	name           string  // friendly name for the test, should be unique
	width          int64   // width of dependency graph to construct
	totalLayers    int64   // depth of dependency graph to construct
	staticFraction float64 // fraction of nodes that always read every source
	nSources       int64   // number of sources each node declares
	readFraction   float64 // fraction of the last layer read in each iteration
	iterations     int64   // number of test iterations
}

func (cfg benchmarkTestConfig) title() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("%dx%d %d sources", cfg.width, cfg.totalLayers, cfg.nSources))
	if cfg.staticFraction < 1 {
		sb.WriteString(" dynamic")
	}
	if cfg.readFraction < 1 {
		sb.WriteString(fmt.Sprintf(" read %0.2f%%", 100*cfg.readFraction))
	}
	return sb.String()
}

type benchmarkGraph struct {
	sources []*property.Property[int]
	layers  [][]*property.Property[int]
}

type benchmarkMakeGraphConfig struct {
	counter                      *int64
	width, totalLayers, nSources int64
	staticFraction               float64
}

func benchmarkMakeGraph(tbl *property.Table, cfg *benchmarkMakeGraphConfig) *benchmarkGraph {
	sources := make([]*property.Property[int], cfg.width)
	for i := range sources {
		sources[i] = property.LiteralWithName(tbl, i, fmt.Sprintf("source %d", i))
	}
	return &benchmarkGraph{
		sources: sources,
		layers: makeBenchmarkDependentRows(tbl, &benchmarkMakeDependentRowsConfig{
			sources:        sources,
			numRows:        cfg.totalLayers - 1,
			counter:        cfg.counter,
			staticFraction: cfg.staticFraction,
			nSources:       cfg.nSources,
		}),
	}
}

type benchmarkRunGraphConfig struct {
	graph        *benchmarkGraph
	iteration    int64
	readFraction float64
}

// benchmarkRunGraph writes one source per iteration and reads some or all of
// the leaves. Returns the sum of the leaves read.
func benchmarkRunGraph(cfg *benchmarkRunGraphConfig) int {
	random := rand.New(rand.NewSource(0))
	leaves := cfg.graph.layers[len(cfg.graph.layers)-1]
	skipCount := int(math.Round(float64(len(leaves)) * (1 - cfg.readFraction)))
	readLeaves := benchmarkRemoveElems(leaves, skipCount, random)

	for i := 0; i < int(cfg.iteration); i++ {
		sourceDex := i % len(cfg.graph.sources)
		cfg.graph.sources[sourceDex].Set(i + sourceDex)

		for _, leaf := range readLeaves {
			leaf.Get()
		}
	}

	sum := 0
	for _, leaf := range readLeaves {
		sum += leaf.Get()
	}
	return sum
}

func benchmarkRemoveElems[T comparable](src []T, rmCount int, rand *rand.Rand) []T {
	copyWithRemovals := make([]T, len(src))
	copy(copyWithRemovals, src)
	for i := 0; i < rmCount; i++ {
		rmDex := rand.Intn(len(copyWithRemovals))
		copyWithRemovals[rmDex] = copyWithRemovals[len(copyWithRemovals)-1]
		copyWithRemovals = copyWithRemovals[:len(copyWithRemovals)-1]
	}
	return copyWithRemovals
}

type benchmarkMakeDependentRowsConfig struct {
	sources           []*property.Property[int]
	numRows, nSources int64
	counter           *int64
	staticFraction    float64
}

func makeBenchmarkDependentRows(tbl *property.Table, cfg *benchmarkMakeDependentRowsConfig) [][]*property.Property[int] {
	prevRow := cfg.sources
	random := rand.New(rand.NewSource(0))
	rows := make([][]*property.Property[int], cfg.numRows)
	for l := int64(0); l < cfg.numRows; l++ {
		rows[l] = makeBenchmarkRow(tbl, &benchmarkRowConfig{
			sources:        prevRow,
			counter:        cfg.counter,
			staticFraction: cfg.staticFraction,
			nSources:       cfg.nSources,
			rand:           random,
		})
		prevRow = rows[l]
	}
	return rows
}

type benchmarkRowConfig struct {
	sources        []*property.Property[int]
	counter        *int64
	staticFraction float64
	nSources       int64
	rand           *rand.Rand
}

// makeBenchmarkRow builds one layer. Dynamic nodes skip one of their sources
// depending on the first value read; they still declare all of them, since
// the declared list only has to cover what an evaluator may read.
func makeBenchmarkRow(tbl *property.Table, cfg *benchmarkRowConfig) []*property.Property[int] {
	row := make([]*property.Property[int], len(cfg.sources))

	for myDex := range cfg.sources {
		mySources := make([]*property.Property[int], 0, cfg.nSources)
		deps := make([]property.Dependency, 0, cfg.nSources)
		for sourceDex := 0; sourceDex < int(cfg.nSources); sourceDex++ {
			src := cfg.sources[(myDex+sourceDex)%len(cfg.sources)]
			mySources = append(mySources, src)
			deps = append(deps, src)
		}

		if cfg.rand.Float64() < cfg.staticFraction {
			row[myDex] = property.Computed(tbl, func() int {
				*cfg.counter++
				sum := 0
				for _, source := range mySources {
					sum += source.Get()
				}
				return sum
			}, deps...)
			continue
		}

		first := mySources[0]
		tail := mySources[1:]
		row[myDex] = property.Computed(tbl, func() int {
			*cfg.counter++
			sum := first.Get()
			if len(tail) == 0 {
				return sum
			}
			shouldDrop := sum&0x1 > 0
			dropDex := sum % len(tail)

			for i := 0; i < len(tail); i++ {
				if shouldDrop && i == dropDex {
					continue
				}
				sum += tail[i].Get()
			}
			return sum
		}, deps...)
	}

	return row
}
