package commands

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Aashish23092/ocr-idcard-extraction/config"
	"github.com/Aashish23092/ocr-idcard-extraction/dto"
	"github.com/Aashish23092/ocr-idcard-extraction/service"
)

func newScanCmd() *cobra.Command {
	var (
		engine   string
		password string
	)

	cmd := &cobra.Command{
		Use:   "scan <image|pdf>",
		Short: "Recognize an identity card scan with the configured OCR engine and parse it",
		Long: `scan reads a PNG, JPEG, WEBP or PDF file, recognizes its text with the engine
selected by OCR_ENGINE (or --engine) and prints the extracted record as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			mimeType := dto.InferMimeType(path)
			if mimeType == "" {
				return fmt.Errorf("%s: %w", path, dto.ErrUnsupportedMimeType)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			cfg := config.LoadConfig()
			if engine != "" {
				cfg.OCREngine = engine
			}
			if templateFile != "" {
				cfg.TemplateFile = templateFile
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			svc, err := service.NewIDCardServiceFromConfig(cfg, cliLogger(cmd))
			if err != nil {
				return err
			}

			result, err := svc.ExtractFromFile(cmd.Context(), data, mimeType, password)
			if err != nil {
				return err
			}

			resp := dto.IDCardExtractResponse{
				RequestID: uuid.NewString(),
				Engine:    result.Engine,
				Source:    result.Source,
				Data:      result.Data,
			}
			if showText {
				resp.RawText = result.Text
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&engine, "engine", "e", "", "OCR engine: tesseract, paddle or gemini (default from OCR_ENGINE)")
	cmd.Flags().StringVar(&password, "password", "", "password for encrypted PDFs")
	return cmd
}
