package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aashish23092/ocr-idcard-extraction/dto"
	"github.com/Aashish23092/ocr-idcard-extraction/service"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <text-file|->",
		Short: "Parse already recognized text into an identity card record",
		Example: `  idcard parse scan.txt
  tesseract card.jpg - -l ron | idcard parse -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			parser, err := service.LoadParser(templateFile)
			if err != nil {
				return err
			}

			resp := dto.IDCardExtractResponse{
				Engine: "none",
				Source: dto.SourceText,
				Data:   parser.Parse(text),
			}
			if showText {
				resp.RawText = text
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}
