package main

import (
	"context"
	"fmt"
	"go/format"
	"log/slog"
	"os"
	"time"

	"github.com/delaneyj/propertyparty/cmd/codegen/templates"
	"github.com/urfave/cli/v3"
)

const (
	genericParamCountKey = "count"
	outKey               = "out"
)

func main() {
	cmd := &cli.Command{
		Name:  "generate",
		Usage: "Generate the typed ComputedN constructors",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  genericParamCountKey,
				Usage: "Number of dependency parameters to generate up to",
				Value: 8,
			},
			&cli.StringFlag{
				Name:  outKey,
				Usage: "File to write",
				Value: "property/computed_gen.go",
			},
		},
		Action: generate,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("codegen failed", "error", err)
		os.Exit(1)
	}
}

func generate(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	out := cmd.String(outKey)
	count := int(cmd.Uint(genericParamCountKey))
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}

	slog.Info("codegen started", "count", count, "out", out)
	defer func() {
		slog.Info("codegen finished", "took", time.Since(start))
	}()

	contents, err := format.Source([]byte(templates.ComputedGen(count)))
	if err != nil {
		return fmt.Errorf("format generated code: %w", err)
	}
	if err := os.WriteFile(out, contents, 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}
