package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atiptools/atiplint/internal/baseline"
	"github.com/atiptools/atiplint/internal/config"
	"github.com/atiptools/atiplint/internal/git"
	"github.com/atiptools/atiplint/internal/lint"
	"github.com/atiptools/atiplint/internal/output"
	"github.com/atiptools/atiplint/internal/probe"
)

// defaultPatterns is what a bare invocation lints.
var defaultPatterns = []string{"**/*.atip.json"}

func runLint(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("cannot determine working directory: %w", err)
	}

	fileCfg, _, err := config.Load(configPath, cwd)
	if err != nil {
		return err
	}
	resolved, err := config.Resolve(fileCfg)
	if err != nil {
		return err
	}

	engine, err := lint.New(resolved)
	if err != nil {
		return err
	}
	// Lookup-only probing: linting never executes the documented binary.
	engine.WithProber(&probe.ExecProber{})

	patterns := args
	switch {
	case changedOnly || stagedOnly:
		var files []string
		if stagedOnly {
			files, err = git.StagedFiles(cwd)
		} else {
			files, err = git.ChangedFiles(cwd)
		}
		if err != nil {
			return err
		}
		patterns = files
	case len(patterns) == 0:
		patterns = defaultPatterns
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch, err := engine.LintPaths(ctx, patterns, lint.Options{ApplyFixes: applyFixes}, concurrency)
	if err != nil {
		return err
	}

	if applyFixes {
		if err := writeFixes(batch); err != nil {
			return err
		}
	}

	if createBaseline {
		if baselinePath == "" {
			return fmt.Errorf("--create-baseline requires --baseline")
		}
		base := baseline.Create(lint.BaselineEntries(batch))
		if err := base.Save(baselinePath); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "baseline written to %s (%d findings)\n",
				baselinePath, len(base.Fingerprints))
		}
		return nil
	}

	if baselinePath != "" {
		base, err := baseline.Load(baselinePath)
		if err != nil {
			return err
		}
		suppressed := lint.FilterBaseline(batch, base)
		if verbose && !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%d baselined finding(s) suppressed\n", suppressed)
		}
	}

	w, closeFn, err := reportWriter(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	formatter, err := output.New(outputFormat, w, quiet, verbose)
	if err != nil {
		return err
	}
	if err := formatter.Format(batch); err != nil {
		return err
	}

	return exitStatus(batch)
}

// writeFixes writes fixed text back to disk for every file an edit landed in.
func writeFixes(batch *lint.BatchReport) error {
	for _, report := range batch.Files {
		if report.Applied == 0 || report.Output == "" {
			continue
		}
		if err := os.WriteFile(report.File, []byte(report.Output), 0644); err != nil {
			return fmt.Errorf("cannot write fixed file %s: %w", report.File, err)
		}
	}
	return nil
}

func reportWriter(cmd *cobra.Command) (io.Writer, func(), error) {
	if outputFile == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// exitStatus maps the batch outcome to the process exit contract.
func exitStatus(batch *lint.BatchReport) error {
	failed := batch.HasErrors()
	if failOn == "warning" {
		failed = failed || batch.TotalWarnings > 0
	}
	if failed {
		return &exitError{code: 1}
	}
	return nil
}

type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
