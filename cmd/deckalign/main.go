// Command deckalign reorders a PPTX deck to follow the category order of a
// criteria document.
//
// Usage:
//
//	deckalign [flags] CRITERIA DECK
//
// CRITERIA is an Excel, Word, HTML, PDF, image or plain-text document
// listing numbered review categories. DECK is the presentation to reorder.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/deckalign"
	"github.com/tsawler/deckalign/oracle"
)

// fileConfig mirrors the command-line flags for YAML config files.
type fileConfig struct {
	Output      string        `yaml:"output"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	Anchors     int           `yaml:"anchors"`
	Timeout     time.Duration `yaml:"timeout"`
	LocalOCR    bool          `yaml:"local_ocr"`
	OCRLanguage string        `yaml:"ocr_language"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:      "deckalign",
		Usage:     "reorder a PPTX deck to follow a criteria document's category order",
		ArgsUsage: "CRITERIA DECK",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the reordered deck to `FILE` (default: DECK with an _output suffix)",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "language model `NAME` for extraction and matching",
				Value: oracle.DefaultModel,
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API `KEY` for the language model",
				EnvVars: []string{"GOOGLE_API_KEY"},
			},
			&cli.IntFlag{
				Name:  "anchors",
				Usage: "number of leading slides that keep their position",
				Value: 2,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per-request timeout for language model calls",
				Value: oracle.DefaultTimeout,
			},
			&cli.BoolFlag{
				Name:  "ocr",
				Usage: "recognize criteria images locally instead of uploading them",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "load defaults from YAML `FILE`",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "debug logging",
			},
		},
		Action: run,
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "deckalign: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected CRITERIA and DECK arguments, got %d", c.NArg())
	}
	criteria := c.Args().Get(0)
	deck := c.Args().Get(1)

	log, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync()

	cfg, err := mergedConfig(c)
	if err != nil {
		return err
	}

	log.Debug("starting",
		zap.String("criteria", criteria),
		zap.String("deck", deck),
		zap.String("model", cfg.Model),
		zap.Int("anchors", cfg.Anchors),
	)

	org := deckalign.Open(criteria, deck).
		Model(cfg.Model).
		AnchorSlides(cfg.Anchors).
		Timeout(cfg.Timeout)
	if cfg.Output != "" {
		org = org.OutputTo(cfg.Output)
	}
	if cfg.APIKey != "" {
		org = org.APIKey(cfg.APIKey)
	}
	if cfg.LocalOCR {
		org = org.LocalOCR().OCRLanguage(cfg.OCRLanguage)
	}

	report, warnings, err := org.Run(c.Context)
	for _, w := range warnings {
		log.Warn(w.Message, zap.String("stage", w.Stage))
	}
	if err != nil {
		return err
	}

	log.Info("deck written",
		zap.String("output", report.Output),
		zap.Int("categories", report.Categories),
		zap.Int("groups", report.Groups),
		zap.Int("matched", report.Matched),
		zap.Int("unmatched", report.Unused),
	)
	fmt.Println(report.Output)
	return nil
}

// mergedConfig combines config-file values with command-line flags. Flags
// that were set explicitly win over the file.
func mergedConfig(c *cli.Context) (*fileConfig, error) {
	cfg := &fileConfig{
		Output:      c.String("output"),
		Model:       c.String("model"),
		APIKey:      c.String("api-key"),
		Anchors:     c.Int("anchors"),
		Timeout:     c.Duration("timeout"),
		LocalOCR:    c.Bool("ocr"),
		OCRLanguage: "jpn+eng",
	}

	path := c.String("config")
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if file.Output != "" && !c.IsSet("output") {
		cfg.Output = file.Output
	}
	if file.Model != "" && !c.IsSet("model") {
		cfg.Model = file.Model
	}
	if file.APIKey != "" && !c.IsSet("api-key") {
		cfg.APIKey = file.APIKey
	}
	if file.Anchors > 0 && !c.IsSet("anchors") {
		cfg.Anchors = file.Anchors
	}
	if file.Timeout > 0 && !c.IsSet("timeout") {
		cfg.Timeout = file.Timeout
	}
	if file.LocalOCR && !c.IsSet("ocr") {
		cfg.LocalOCR = true
	}
	if file.OCRLanguage != "" {
		cfg.OCRLanguage = file.OCRLanguage
	}

	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
