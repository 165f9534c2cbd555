// Package cli implements the markupguard command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/njchilds90/markupguard"
	"github.com/njchilds90/markupguard/internal/config"
	"github.com/njchilds90/markupguard/internal/metrics"
	"github.com/njchilds90/markupguard/internal/panel"
)

type sanitizeFlags struct {
	permissive    bool
	preview       bool
	column        string
	markupType    string
	maxInputBytes int
	maxDepth      int
	maxNodes      int
	workers       int
	logLevel      string
	metricsFile   string
}

// NewRootCommand builds the markupguard command tree. Environment
// configuration supplies defaults; flags override it.
func NewRootCommand(cfg config.Config, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "markupguard",
		Short:         "Sanitize untrusted HTML fragments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(sanitizeCMD(cfg))
	return root
}

func sanitizeCMD(cfg config.Config) *cobra.Command {
	f := sanitizeFlags{
		permissive:    !cfg.Strict,
		markupType:    string(panel.MarkupHTML),
		maxInputBytes: cfg.MaxInputBytes,
		maxDepth:      cfg.MaxDepth,
		maxNodes:      cfg.MaxNodes,
		workers:       cfg.Workers,
		logLevel:      cfg.LogLevel,
	}

	cmd := &cobra.Command{
		Use:   "sanitize [file]",
		Short: "Read a JSON array of markup strings and write the sanitized array",
		Long: "Reads a JSON array whose entries are strings or null from file, or stdin\n" +
			"when no file is given, and writes one sanitized string per entry in the\n" +
			"same order. With --preview the panel view is written instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer file.Close()
				in = file
			}
			return runSanitize(f, in, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&f.permissive, "permissive", f.permissive, "pass markup through unchanged (unsafe)")
	fl.BoolVar(&f.preview, "preview", false, "write the panel view with plain-text previews")
	fl.StringVar(&f.column, "column", "", "column name shown in the panel view")
	fl.StringVar(&f.markupType, "markup-type", f.markupType, "markup type of the column")
	fl.IntVar(&f.maxInputBytes, "max-input-bytes", f.maxInputBytes, "largest item accepted in strict mode")
	fl.IntVar(&f.maxDepth, "max-depth", f.maxDepth, "deepest element nesting accepted")
	fl.IntVar(&f.maxNodes, "max-nodes", f.maxNodes, "most nodes accepted per item")
	fl.IntVar(&f.workers, "workers", f.workers, "items sanitized concurrently")
	fl.StringVar(&f.logLevel, "log-level", f.logLevel, "debug, info, warn or error")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus text metrics to this file")
	return cmd
}

func runSanitize(f sanitizeFlags, in io.Reader, out, errOut io.Writer) error {
	cfg := config.Config{
		Strict:        !f.permissive,
		MaxInputBytes: f.maxInputBytes,
		MaxDepth:      f.maxDepth,
		MaxNodes:      f.maxNodes,
		Workers:       f.workers,
		LogLevel:      f.logLevel,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := cfg.Level()
	markupType, err := panel.ParseMarkupType(f.markupType)
	if err != nil {
		return err
	}

	var values []*string
	if err := json.NewDecoder(in).Decode(&values); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
	reg := prometheus.NewRegistry()
	rec, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	s := markupguard.New(
		markupguard.WithLimits(cfg.Limits()),
		markupguard.WithWorkers(cfg.Workers),
		markupguard.WithLogger(logger),
		markupguard.WithRecorder(rec),
	)

	var result any
	if f.preview {
		r := panel.NewRenderer(s, logger)
		result = r.Render(panel.Config{
			Column:     f.column,
			MarkupType: markupType,
			Mode:       panel.ModeFromAllowUnsafe(f.permissive),
		}, panel.Bind(values))
	} else {
		if f.permissive {
			logger.Warn("markup sanitization disabled, unsafe content may be rendered", slog.Int("items", len(values)))
		}
		results := s.SanitizeAllResults(values, cfg.Strict)
		sanitized := make([]string, len(results))
		for i, res := range results {
			sanitized[i] = res.HTML
			if res.Err != nil {
				logger.Warn("markup item replaced by fallback",
					slog.Int("item", i),
					slog.String("code", string(markupguard.CodeOf(res.Err))),
					slog.String("error", res.Err.Error()))
			}
		}
		result = sanitized
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	if f.metricsFile != "" {
		if err := prometheus.WriteToTextfile(f.metricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
