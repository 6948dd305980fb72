// Package model inspects model artifacts.
package model

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/txn-classifier/cmd/root"
	"fjacquet/txn-classifier/internal/categorizer"
	"fjacquet/txn-classifier/internal/logging"
	"fjacquet/txn-classifier/internal/modelbundle"
	"fjacquet/txn-classifier/internal/store"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Cmd represents the model command
var Cmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect model artifacts",
}

var infoFormat string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Load the configured model and print its metadata",
	Long: `Load the model artifact resolved from --model or model.path, validate it, and
print its version, labels and vocabulary size. A non-zero exit means the
service would refuse to start with this artifact.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		artifactStore := store.NewArtifactStore(root.AppConfig.Model.Path, root.Log)
		return Info(artifactStore, root.Log, infoFormat, cmd.OutOrStdout())
	},
}

func init() {
	infoCmd.Flags().StringVarP(&infoFormat, "format", "f", "text", "Output format: text or yaml")
	Cmd.AddCommand(infoCmd)
}

// Summary describes a loaded model.
type Summary struct {
	Source         string   `yaml:"source"`
	Version        string   `yaml:"version"`
	Labels         []string `yaml:"labels"`
	Categories     []string `yaml:"categories"`
	VocabularySize int      `yaml:"vocabulary_size"`
}

// Info loads the artifact behind r and writes its summary to out.
func Info(r store.ArtifactReader, logger logging.Logger, format string, out io.Writer) error {
	bundle, err := modelbundle.LoadFrom(r)
	if err != nil {
		return err
	}

	labels := bundle.Labels()
	summary := Summary{
		Source:         bundle.Source(),
		Version:        bundle.Version(),
		Labels:         labels,
		Categories:     categorizer.StandardizeAll(labels),
		VocabularySize: bundle.VocabularySize(),
	}
	logger.Debug("Model inspected", logging.Field{Key: logging.FieldModelVersion, Value: summary.Version})

	switch strings.ToLower(format) {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		return enc.Close()
	case "text", "":
		fmt.Fprintf(out, "Source:          %s\n", summary.Source)
		fmt.Fprintf(out, "Version:         %s\n", summary.Version)
		fmt.Fprintf(out, "Vocabulary size: %d\n", summary.VocabularySize)
		fmt.Fprintln(out, "Labels:")
		for i, l := range summary.Labels {
			fmt.Fprintf(out, "  %d: %s -> %s\n", i, l, summary.Categories[i])
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
