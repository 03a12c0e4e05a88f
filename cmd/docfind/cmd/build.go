package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/docfind-go/docfind/internal/buildlock"
	"github.com/docfind-go/docfind/internal/config"
	dferrors "github.com/docfind-go/docfind/internal/errors"
	"github.com/docfind-go/docfind/internal/ui"
	"github.com/docfind-go/docfind/pkg/aggregate"
	"github.com/docfind-go/docfind/pkg/embed"
	"github.com/docfind-go/docfind/pkg/extract"
	"github.com/docfind-go/docfind/pkg/index"
	"github.com/docfind-go/docfind/pkg/ingest"
	"github.com/docfind-go/docfind/pkg/serialize"

	"github.com/docfind-go/docfind/cmd/docfind/assets"
)

func newBuildCmd() *cobra.Command {
	var (
		templatePath string
		jsShimPath   string
		noTUI        bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "build <documents.json> <output_dir>",
		Short: "Build a search index from a JSON document array",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd, args[0], args[1], templatePath, jsShimPath, noTUI, dryRun)
		},
	}

	cmd.Flags().StringVar(&templatePath, "template", "", "Path to a WebAssembly template module (default: built-in stub)")
	cmd.Flags().StringVar(&jsShimPath, "js-shim", "", "Path to the JS host shim to copy (default: built-in shim)")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Use plain text progress output instead of the TUI")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the pipeline and report counts without writing output")

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, inputPath, outputDir, templatePath, jsShimPath string, noTUI, dryRun bool) error {
	start := time.Now()

	cfg, err := config.Load(filepath.Dir(inputPath))
	if err != nil {
		return exitErr(cmd, err)
	}

	renderer := ui.NewRenderer(ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(noTUI || dryRun),
		ui.WithNoColor(ui.DetectNoColor()),
		ui.WithProjectDir(outputDir)))
	if err := renderer.Start(ctx); err != nil {
		return exitErr(cmd, err)
	}
	defer func() { _ = renderer.Stop() }()

	var lock *buildlock.Lock
	if !dryRun && cfg.Build.LockOutputDir {
		lock = buildlock.New(outputDir)
		if err := lock.Lock(); err != nil {
			return exitErr(cmd, dferrors.InternalError("failed to lock output directory", err))
		}
		defer func() { _ = lock.Unlock() }()
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return exitErr(cmd, dferrors.InputMalformed("failed to read input file", err).WithDetail("path", inputPath))
	}

	var timings ui.StageTimings

	stageStart := time.Now()
	renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageIngest, Message: "parsing documents"})
	docs, err := ingest.Ingest(raw)
	if err != nil {
		renderer.AddError(ui.ErrorEvent{Err: err})
		return exitErr(cmd, err)
	}
	timings.Ingest = time.Since(stageStart)
	slog.Info("doc_ingested", slog.Int("count", len(docs)))

	stageStart = time.Now()
	renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageExtract, Total: len(docs), Message: "extracting keyphrases"})
	contribs, err := extract.All(ctx, docs, cfg.Extract, cfg.Build.Workers)
	if err != nil {
		renderer.AddError(ui.ErrorEvent{Err: err})
		return exitErr(cmd, err)
	}
	timings.Extract = time.Since(stageStart)
	slog.Info("keywords_extracted", slog.Int("contributions", len(contribs)))

	stageStart = time.Now()
	renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageAggregate, Message: "aggregating postings"})
	postings, err := aggregate.Aggregate(contribs)
	if err != nil {
		renderer.AddError(ui.ErrorEvent{Err: err})
		return exitErr(cmd, err)
	}
	timings.Aggregate = time.Since(stageStart)

	stageStart = time.Now()
	renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageBuild, Message: "assembling index image"})
	img, err := index.Build(docs, postings, *cfg)
	if err != nil {
		renderer.AddError(ui.ErrorEvent{Err: err})
		return exitErr(cmd, err)
	}
	timings.Compress = time.Since(stageStart)
	timings.Build = timings.Compress

	stageStart = time.Now()
	renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageSerialize, Message: "encoding binary envelope"})
	envelope := serialize.Encode(img)
	timings.Serialize = time.Since(stageStart)
	slog.Info("image_serialized", slog.Int("bytes", len(envelope)))

	stageStart = time.Now()
	renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageEmbed, Message: "patching wasm template"})
	template, err := loadOrDefault(templatePath, assets.DefaultTemplate())
	if err != nil {
		return exitErr(cmd, dferrors.TemplateError(dferrors.ErrCodeTemplateMalformed, "failed to read template", err))
	}
	patched, err := embed.Embed(template, envelope)
	if err != nil {
		renderer.AddError(ui.ErrorEvent{Err: err})
		return exitErr(cmd, err)
	}
	timings.Embed = time.Since(stageStart)
	slog.Info("wasm_patched", slog.Int("bytes", len(patched)))

	stats := ui.CompletionStats{
		Documents:  len(docs),
		Keywords:   len(postings),
		ImageBytes: int64(len(envelope)),
		Duration:   time.Since(start),
		Stages:     timings,
	}
	renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageComplete, Message: "done"})
	renderer.Complete(stats)

	if dryRun {
		return nil
	}

	jsShim, err := loadOrDefault(jsShimPath, assets.DefaultJSShim())
	if err != nil {
		return exitErr(cmd, dferrors.InputMalformed("failed to read js shim", err).WithDetail("path", jsShimPath))
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return exitErr(cmd, dferrors.InternalError("failed to create output directory", err))
	}
	if err := os.WriteFile(filepath.Join(outputDir, "docfind.js"), jsShim, 0o644); err != nil {
		return exitErr(cmd, dferrors.InternalError("failed to write docfind.js", err))
	}
	if err := os.WriteFile(filepath.Join(outputDir, "docfind_bg.wasm"), patched, 0o644); err != nil {
		return exitErr(cmd, dferrors.InternalError("failed to write docfind_bg.wasm", err))
	}

	return nil
}

func loadOrDefault(path string, fallback []byte) ([]byte, error) {
	if path == "" {
		return fallback, nil
	}
	return os.ReadFile(path)
}

// exitErr returns err unchanged; the root command silences cobra's own
// error/usage printing so main can print it once and translate it to the
// process exit code spec.md §6 defines.
func exitErr(_ *cobra.Command, err error) error {
	return err
}
