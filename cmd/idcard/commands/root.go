package commands

import (
	"encoding/json"
	"io"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Aashish23092/ocr-idcard-extraction/logger"
)

var (
	templateFile string
	verbose      bool
	showText     bool
)

// NewRootCmd builds the idcard command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "idcard",
		Short: "Extract Romanian identity card fields from OCR text or scans",
		Long: `idcard turns the text of a Romanian identity card (carte de identitate) into a
record with the 13 standard fields. "parse" works on text that was already
recognized; "scan" runs the configured OCR engine on an image or PDF first.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	root.PersistentFlags().StringVarP(&templateFile, "template", "t", "", "YAML template overriding labels, denylist or citizenship")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr at debug level")
	root.PersistentFlags().BoolVar(&showText, "show-text", false, "include the recognized text in the output")

	root.AddCommand(newParseCmd(), newScanCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func cliLogger(cmd *cobra.Command) zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	return logger.NewWithWriter("idcard-cli", cmd.ErrOrStderr(), "debug", "console")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
