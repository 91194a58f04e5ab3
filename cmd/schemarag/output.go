package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tordrt/schemarag/internal/formatter"
	"github.com/tordrt/schemarag/internal/schema"
)

// outputFlags are shared by the commands that write a schema
type outputFlags struct {
	file           string
	dir            string
	format         string
	splitThreshold int
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.file, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&o.dir, "output-dir", "d", "", "Output directory for multi-file output (text or markdown)")
	cmd.Flags().StringVarP(&o.format, "format", "f", formatter.FormatJSON, "Output format: json, documents, yaml, text or markdown")
	cmd.Flags().IntVar(&o.splitThreshold, "split-threshold", 0, "Split into multiple files when table count exceeds this (requires --output-dir)")
}

// write formats s to the selected destination
func (o *outputFlags) write(s *schema.Schema) error {
	if o.dir != "" && o.file != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	shouldSplit := o.dir != "" && (o.splitThreshold == 0 || len(s.Tables) > o.splitThreshold)
	if shouldSplit {
		if !formatter.SupportsMultiFile(o.format) {
			return fmt.Errorf("--output-dir requires text or markdown format, got %s", o.format)
		}
		if err := formatter.NewMultiFileFormatter(o.dir, o.format).Format(s); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		status("Wrote %d tables to %s", len(s.Tables), o.dir)
		return nil
	}

	var writer io.Writer = os.Stdout
	if o.file != "" {
		f, err := os.Create(o.file)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				warn("failed to close output file: %v", err)
			}
		}()
		writer = f
	}

	f, err := formatter.New(o.format, writer)
	if err != nil {
		return err
	}
	if err := f.Format(s); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if o.file != "" {
		status("Wrote %d tables to %s", len(s.Tables), o.file)
	}
	return nil
}

// Status lines go to stderr so stdout carries only command output.
var (
	statusColor = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed)
)

func status(format string, args ...any) {
	_, _ = statusColor.Fprintf(os.Stderr, format+"\n", args...)
}

func warn(format string, args ...any) {
	_, _ = warnColor.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

func failure(format string, args ...any) {
	_, _ = errorColor.Fprintf(os.Stderr, format+"\n", args...)
}
