package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/ocr-idcard-extraction/dto"
)

const cardText = "ROMANIA\nCNP 1850101123456\nNume/Nom/Last name\nPOPESCU\nPrenume/Prenom/First name\nION\n"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseCmd_Stdin(t *testing.T) {
	out, err := run(t, cardText, "parse", "-")
	require.NoError(t, err)

	var resp dto.IDCardExtractResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, dto.SourceText, resp.Source)
	assert.Equal(t, "1850101123456", resp.Data.CNP)
	assert.Equal(t, "POPESCU", resp.Data.Nume)
	assert.Equal(t, "ION", resp.Data.Prenume)
	assert.Equal(t, "Română / ROU", resp.Data.Cetatenie)
	assert.Empty(t, resp.RawText)
}

func TestParseCmd_FileWithTemplate(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "card.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("REPUBLICA MOLDOVA\n"+cardText), 0o600))
	tmplPath := filepath.Join(dir, "md.yaml")
	require.NoError(t, os.WriteFile(tmplPath, []byte("citizenship_token: MOLDOVA\ncitizenship_value: MDA\n"), 0o600))

	out, err := run(t, "", "parse", textPath, "--template", tmplPath, "--show-text")
	require.NoError(t, err)

	var resp dto.IDCardExtractResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "MDA", resp.Data.Cetatenie)
	assert.Contains(t, resp.RawText, "REPUBLICA MOLDOVA")
}

func TestParseCmd_Errors(t *testing.T) {
	_, err := run(t, "", "parse")
	assert.Error(t, err)

	_, err = run(t, "", "parse", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestScanCmd_Errors(t *testing.T) {
	_, err := run(t, "", "scan", "card.gif")
	assert.ErrorIs(t, err, dto.ErrUnsupportedMimeType)

	img := filepath.Join(t.TempDir(), "card.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o600))
	_, err = run(t, "", "scan", img, "--engine", "abbyy")
	assert.ErrorContains(t, err, "unknown OCR_ENGINE")
}
