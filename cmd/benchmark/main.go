package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/delaneyj/propertyparty/property"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	slogmulti "github.com/samber/slog-multi"
	"github.com/urfave/cli/v3"
)

const (
	iterationsKey = "iterations"
	widthsKey     = "widths"
	heightsKey    = "heights"
	logJSONKey    = "log-json"
	debugKey      = "debug"
	cpuProfileKey = "cpuprofile"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure set + get propagation through chains of computed properties",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  iterationsKey,
				Usage: "Timed iterations per graph shape",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  widthsKey,
				Usage: "Comma separated number of chains hanging off the source",
				Value: "1,10,100,1000",
			},
			&cli.StringFlag{
				Name:  heightsKey,
				Usage: "Comma separated chain lengths",
				Value: "1,10,100,1000",
			},
			&cli.StringFlag{
				Name:  logJSONKey,
				Usage: "Also write JSON logs to this file",
			},
			&cli.BoolFlag{
				Name:  debugKey,
				Usage: "Log at debug level",
			},
			&cli.StringFlag{
				Name:  cpuProfileKey,
				Usage: "Write a CPU profile to this file",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("benchmark failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger, closeLog, err := newLogger(cmd.String(logJSONKey), cmd.Bool(debugKey))
	if err != nil {
		return err
	}
	defer closeLog()

	if path := cmd.String(cpuProfileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	ww, err := parseSizes(cmd.String(widthsKey))
	if err != nil {
		return fmt.Errorf("%s: %w", widthsKey, err)
	}
	hh, err := parseSizes(cmd.String(heightsKey))
	if err != nil {
		return fmt.Errorf("%s: %w", heightsKey, err)
	}
	iters := int(cmd.Uint(iterationsKey))

	logger.Info("warming up")
	if err := benchmarkChains(logger, []int{1}, []int{1}, iters, false); err != nil {
		return err
	}
	return benchmarkChains(logger, ww, hh, iters, true)
}

func newLogger(jsonPath string, debug bool) (*slog.Logger, func(), error) {
	level := new(slog.LevelVar)
	if debug {
		level.Set(slog.LevelDebug)
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}
	closeLog := func() {}
	if jsonPath != "" {
		f, err := os.Create(jsonPath)
		if err != nil {
			return nil, nil, fmt.Errorf("create json log: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		closeLog = func() { f.Close() }
	}
	return slog.New(slogmulti.Fanout(handlers...)), closeLog, nil
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, fmt.Errorf("size must be positive, got %d", n)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func addOne(v int) int {
	return v + 1
}

func benchmarkChains(logger *slog.Logger, ww, hh []int, iters int, shouldRender bool) error {
	tw := table.NewWriter()
	tw.SetTitle("Property chains")
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "evaluations"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			tbl := property.NewTable(
				property.WithLogger(logger),
				property.WithName(fmt.Sprintf("chains %dx%d", w, h)),
			)
			var (
				src    *property.Property[int]
				leaves []*property.Property[int]
			)
			scope := tbl.RunInScope(func() {
				src = property.Literal(tbl, 1)
				for i := 0; i < w; i++ {
					last := src
					for j := 0; j < h; j++ {
						last = property.Computed1(tbl, last, addOne)
					}
					leaves = append(leaves, last)
				}
			})

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.Set(src.Get() + 1)
				for _, leaf := range leaves {
					leaf.Get()
				}
				tach.AddTime(time.Since(start))
			}

			want := src.Get() + h
			for _, leaf := range leaves {
				if got := leaf.Get(); got != want {
					return fmt.Errorf("%dx%d: leaf is %d, want %d", w, h, got, want)
				}
			}
			stats := tbl.Stats()
			if err := scope.Drop(); err != nil {
				return err
			}
			if err := tbl.Check(); err != nil {
				return err
			}
			if tbl.Len() != 0 {
				return fmt.Errorf("%dx%d: %d cells leaked", w, h, tbl.Len())
			}

			calc := tach.Calc()
			tw.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
					stats.Evaluations,
				},
			})
		}
	}

	if shouldRender {
		tw.Render()
	}
	return nil
}
