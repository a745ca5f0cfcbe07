// Command render writes every dashboard chart to SVG files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/okian/marquee/internal/export"
	"github.com/okian/marquee/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	cfg := export.DefaultConfig()
	var charts, level string
	var help bool

	flags := flag.NewFlagSet("render", flag.ContinueOnError)
	flags.StringVar(&cfg.DataSource, "data", cfg.DataSource, "dataset directory, base URL or \"embedded\"")
	flags.StringVar(&cfg.OutDir, "out", cfg.OutDir, "output directory")
	flags.Float64Var(&cfg.Width, "width", cfg.Width, "viewport width")
	flags.Float64Var(&cfg.Height, "height", cfg.Height, "viewport height")
	flags.StringVar(&cfg.Hover, "hover", "", "entity id to focus")
	flags.StringVar(&cfg.Pinned, "pin", "", "title id or year to pin")
	flags.StringVar(&charts, "charts", "", "comma separated chart subset")
	flags.BoolVar(&cfg.Layouts, "layouts", false, "also write JSON layouts")
	flags.StringVar(&cfg.AnnotationsFile, "annotations", os.Getenv("MARQUEE_ANNOTATIONS_FILE"), "annotation table YAML")
	flags.StringVar(&cfg.LogFile, "log", "", "also write logs to this file")
	flags.StringVar(&level, "level", "info", "log level")
	flags.BoolVar(&help, "help", false, "show help")
	flags.Usage = func() { export.ShowHelp(os.Stderr) }

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if help {
		export.ShowHelp(os.Stdout)
		return 0
	}
	cfg.Charts = export.ParseCharts(charts)

	closer, err := export.SetupLogging(level, cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Named("render")
	report, err := export.Run(ctx, cfg, log)
	for _, name := range report.Written {
		fmt.Println(name)
	}
	if err != nil {
		log.Error(ctx, "export failed", logger.Error(err))
		return 1
	}
	return 0
}
