package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hejijunhao/annotate/internal/config"
	"github.com/hejijunhao/annotate/internal/engine"
	"github.com/hejijunhao/annotate/internal/eval"
	"github.com/hejijunhao/annotate/internal/logging"
	"github.com/hejijunhao/annotate/internal/output"
	"github.com/hejijunhao/annotate/internal/output/file"
	"github.com/hejijunhao/annotate/internal/output/multi"
	"github.com/hejijunhao/annotate/internal/output/stdout"
	"github.com/hejijunhao/annotate/internal/pipeline"
	"github.com/hejijunhao/annotate/internal/store"
)

// app carries configuration and the report sink across subcommands.
type app struct {
	cfg config.Config
	out output.Output
}

func newRootCmd(cfg config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:           "annotate",
		Short:         "Batch-label text records and images, and score labels against references",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("log-level") || cmd.Flags().Changed("log-format") {
				logging.Init(a.cfg.Log.Format, logging.ParseLevel(a.cfg.Log.Level))
			}
			return a.openOutput(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.out != nil {
				return a.out.Close()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&a.cfg.Output.Pretty, "pretty", cfg.Output.Pretty, "indent JSON reports")
	pf.StringVar(&a.cfg.Output.ReportLog, "report-log", cfg.Output.ReportLog, "also append reports to this NDJSON file")
	pf.StringVar(&a.cfg.Log.Level, "log-level", cfg.Log.Level, "debug, info, warn, or error")
	pf.StringVar(&a.cfg.Log.Format, "log-format", cfg.Log.Format, "text or json")

	root.AddCommand(
		a.textCmd(),
		a.imagesCmd(),
		a.classifyCmd(),
		a.evaluateCmd(),
		a.scoreTextCmd(),
	)
	return root
}

func (a *app) openOutput(cmd *cobra.Command) error {
	var reportLog output.Output
	if a.cfg.Output.ReportLog != "" {
		f, err := file.New(a.cfg.Output.ReportLog)
		if err != nil {
			return err
		}
		reportLog = f
	}
	a.out = multi.New(stdout.New(cmd.OutOrStdout(), a.cfg.Output.Pretty), reportLog)
	return nil
}

func (a *app) textCmd() *cobra.Command {
	var labels []string
	cmd := &cobra.Command{
		Use:   "text SRC DST",
		Short: "Apply a fixed label set to every text record in SRC",
		Long: fmt.Sprintf("Reads SRC, applies the labels to every record, and writes DST in the "+
			"format of its extension. Known extensions: %s.", strings.Join(store.Formats(), " ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := a.annotator(nil).AnnotateFile(cmd.Context(), args[0], args[1], labels)
			if err != nil {
				return err
			}
			return a.out.Write(cmd.Context(), output.FormatRun(run, args[0], args[1]))
		},
	}
	cmd.Flags().StringSliceVar(&labels, "labels", a.cfg.Pipeline.TextLabels, "comma-separated labels")
	cmd.Flags().BoolVar(&a.cfg.Pipeline.CleanText, "clean", a.cfg.Pipeline.CleanText, "normalize text (NFC, lower-case, trim)")
	return cmd
}

func (a *app) imagesCmd() *cobra.Command {
	var (
		labels []string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "images DIR DST",
		Short: "Apply a fixed label set to every image in DIR",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := a.annotator(nil).AnnotateImages(cmd.Context(), args[0], args[1], labels, limit)
			if err != nil {
				return err
			}
			return a.out.Write(cmd.Context(), output.FormatRun(run, args[0], args[1]))
		},
	}
	cmd.Flags().StringSliceVar(&labels, "labels", a.cfg.Pipeline.ImageLabels, "comma-separated labels")
	cmd.Flags().IntVar(&limit, "limit", 0, "only the first N images in file-name order (0 = all)")
	return cmd
}

func (a *app) classifyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "classify SRC DST",
		Short: "Label each image with the model's answer",
		Long: "SRC is an image directory or a record file listing image paths. " +
			"Images that cannot be read are labelled \"unreadable\". The backend comes from " +
			"ANNOTATE_BACKEND (onnx, vision, http) or --backend.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			eng, err := engine.Open(cmd.Context(), a.cfg.Engine)
			if err != nil {
				return err
			}
			defer eng.Close()

			cls, err := eng.Classifier()
			if err != nil {
				return err
			}
			run, err := a.annotator(cls).ClassifyImages(cmd.Context(), args[0], args[1], limit)
			if err != nil {
				if run != nil && errors.Is(err, context.Canceled) {
					slog.Warn("run cancelled, output not written", "run_id", run.ID, "dst", args[1])
				}
				return err
			}
			return a.out.Write(cmd.Context(), output.FormatRun(run, args[0], args[1]))
		},
	}
	f := cmd.Flags()
	f.IntVar(&limit, "limit", 0, "only the first N images (0 = all)")
	f.IntVar(&a.cfg.Pipeline.BatchSize, "batch-size", a.cfg.Pipeline.BatchSize, "images per model call")
	f.StringVar(&a.cfg.Engine.Backend, "backend", a.cfg.Engine.Backend, "onnx, vision, or http")
	f.StringVar(&a.cfg.Engine.Device, "device", a.cfg.Engine.Device, "auto or cpu")
	f.StringVar(&a.cfg.Engine.Endpoint, "endpoint", a.cfg.Engine.Endpoint, "inference server URL for the http backend")
	return cmd
}

func (a *app) evaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate PREDICTED REFERENCE",
		Short: "Score predicted label sets against reference label sets",
		Long: "Records are compared by position. Reports exact-match accuracy and " +
			"micro-averaged precision, recall, and F1.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := eval.EvaluateFiles(args[0], args[1])
			if err != nil {
				return err
			}
			return a.out.Write(cmd.Context(), output.FormatEvaluation(rep, args[0], args[1]))
		},
	}
}

func (a *app) scoreTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score-text PREDICTED REFERENCE",
		Short: "Score predicted texts against reference texts by exact match",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := eval.ExactMatchFiles(args[0], args[1])
			if err != nil {
				return err
			}
			return a.out.Write(cmd.Context(), output.FormatTextMatch(rep, args[0], args[1]))
		},
	}
}

func (a *app) annotator(cls pipeline.BatchClassifier) *pipeline.Annotator {
	opts := []pipeline.Option{
		pipeline.WithBatchSize(a.cfg.Pipeline.BatchSize),
		pipeline.WithCleanText(a.cfg.Pipeline.CleanText),
	}
	if cls != nil {
		opts = append(opts, pipeline.WithClassifier(cls))
	}
	return pipeline.New(opts...)
}

