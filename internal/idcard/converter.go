package idcard

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Converter turns a rendered .pptx into a PDF.
type Converter interface {
	Convert(ctx context.Context, pptxPath, outDir string) (string, error)
}

// SofficeConverter shells out to LibreOffice in headless mode. Conversion
// is best effort; the card pipeline carries on with the .pptx alone when
// no office suite is installed.
type SofficeConverter struct {
	binary string
}

// NewSofficeConverter builds a converter around the given binary name.
func NewSofficeConverter(binary string) *SofficeConverter {
	if binary == "" {
		binary = "soffice"
	}
	return &SofficeConverter{binary: binary}
}

// Convert renders pptxPath to PDF inside outDir and returns the PDF path.
func (c *SofficeConverter) Convert(ctx context.Context, pptxPath, outDir string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary,
		"--headless", "--convert-to", "pdf", "--outdir", outDir, pptxPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("soffice convert: %w: %s", err, strings.TrimSpace(string(out)))
	}

	base := strings.TrimSuffix(filepath.Base(pptxPath), filepath.Ext(pptxPath))
	pdfPath := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("soffice convert: output missing: %w", err)
	}
	return pdfPath, nil
}
