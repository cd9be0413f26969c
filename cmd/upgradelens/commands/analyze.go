package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/moolen/upgradelens/internal/analysis"
	"github.com/moolen/upgradelens/internal/logging"
	"github.com/moolen/upgradelens/internal/models"
	"github.com/moolen/upgradelens/internal/render"
)

// Output formats.
const (
	formatJSON     = "json"
	formatYAML     = "yaml"
	formatMarkdown = "markdown"
)

// DefaultBatchConcurrency bounds the documents analyzed in parallel by batch.
const DefaultBatchConcurrency = 4

type analyzeOptions struct {
	*globalOptions
	entitiesPath string
	output       string
}

func newAnalyzeCmd(g *globalOptions) *cobra.Command {
	opts := &analyzeOptions{globalOptions: g}
	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Analyze release notes and print the full result",
		Long: `Analyze a release note document and print the entities, classifications,
Kubernetes context, breaking changes, deprecations and action items found in it.

The document is read from the named file, or from stdin when the argument is
omitted or "-".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runAnalyze(cmd, args)
		},
	}
	cmd.Flags().StringVar(&opts.entitiesPath, "entities", "", "JSON file of external NER entities to merge into the analysis")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatJSON, "Output format: json or yaml")
	return cmd
}

func (o *analyzeOptions) runAnalyze(cmd *cobra.Command, args []string) error {
	if o.output != formatJSON && o.output != formatYAML {
		return fmt.Errorf("unsupported output format %q (must be json or yaml)", o.output)
	}
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	engine, err := o.engine()
	if err != nil {
		return err
	}
	source, err := o.entitySource()
	if err != nil {
		return err
	}

	begin := time.Now()
	r, err := engine.AnalyzeWithSource(cmd.Context(), text, source)
	if err != nil {
		return err
	}
	r.AnalysisID = uuid.NewString()
	logAnalysis(r.AnalysisID, begin)

	return writeOutput(cmd.OutOrStdout(), o.output, r)
}

func (o *analyzeOptions) entitySource() (analysis.EntitySource, error) {
	if o.entitiesPath == "" {
		return analysis.StaticSource(nil), nil
	}
	return analysis.LoadEntitiesFile(o.entitiesPath)
}

func newBreakingChangesCmd(g *globalOptions) *cobra.Command {
	opts := &analyzeOptions{globalOptions: g}
	cmd := &cobra.Command{
		Use:   "breaking-changes [file|-]",
		Short: "Report the breaking changes and upgrade risk of release notes",
		Long: `Analyze a release note document and print only its upgrade risk: breaking
changes, API deprecations, critical actions, affected components and a
severity assessment.

The markdown format is styled when stdout is a terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runBreakingChanges(cmd, args)
		},
	}
	cmd.Flags().StringVar(&opts.entitiesPath, "entities", "", "JSON file of external NER entities to merge into the analysis")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatMarkdown, "Output format: json, yaml or markdown")
	return cmd
}

func (o *analyzeOptions) runBreakingChanges(cmd *cobra.Command, args []string) error {
	switch o.output {
	case formatJSON, formatYAML, formatMarkdown:
	default:
		return fmt.Errorf("unsupported output format %q (must be json, yaml or markdown)", o.output)
	}
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	engine, err := o.engine()
	if err != nil {
		return err
	}
	source, err := o.entitySource()
	if err != nil {
		return err
	}
	external, err := source.DetectEntities(cmd.Context(), text)
	if err != nil {
		return err
	}

	begin := time.Now()
	report, err := engine.DetectBreakingChanges(cmd.Context(), text, external)
	if err != nil {
		return err
	}
	report.AnalysisID = uuid.NewString()
	logAnalysis(report.AnalysisID, begin)

	if o.output == formatMarkdown {
		return render.Write(cmd.OutOrStdout(), render.Markdown(report))
	}
	return writeOutput(cmd.OutOrStdout(), o.output, report)
}

type batchOptions struct {
	*globalOptions
	concurrency int
	output      string
}

// BatchItem is one analyzed file of a batch run.
type BatchItem struct {
	File   string                 `json:"file"`
	Result *models.AnalysisResult `json:"result"`
}

func newBatchCmd(g *globalOptions) *cobra.Command {
	opts := &batchOptions{globalOptions: g}
	cmd := &cobra.Command{
		Use:   "batch FILE...",
		Short: "Analyze several release note files in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runBatch(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", DefaultBatchConcurrency, "Maximum number of files analyzed at once")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatJSON, "Output format: json or yaml")
	return cmd
}

func (o *batchOptions) runBatch(ctx context.Context, w io.Writer, files []string) error {
	if o.concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}
	if o.output != formatJSON && o.output != formatYAML {
		return fmt.Errorf("unsupported output format %q (must be json or yaml)", o.output)
	}
	engine, err := o.engine()
	if err != nil {
		return err
	}

	begin := time.Now()
	items := make([]BatchItem, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, file := range files {
		g.Go(func() error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			r, err := engine.Analyze(ctx, string(data), nil)
			if err != nil {
				return fmt.Errorf("failed to analyze %s: %w", file, err)
			}
			r.AnalysisID = uuid.NewString()
			items[i] = BatchItem{File: file, Result: r}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logging.GetLogger("batch").InfoWithFields("Batch analyzed",
		logging.Field("files", len(files)),
		logging.Field("duration_ms", time.Since(begin).Milliseconds()))
	return writeOutput(w, o.output, items)
}

// readInput returns the document named by args, or stdin.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}

func logAnalysis(id string, begin time.Time) {
	logging.GetLogger("analyze").DebugWithFields("Analysis finished",
		logging.Field("analysis_id", id),
		logging.Field("processing_time_ms", float64(time.Since(begin).Microseconds())/1000))
}
