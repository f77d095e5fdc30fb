package vision

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"pdf-rag-chat/internal/llmservice"
	"pdf-rag-chat/internal/models"
)

// PageImage is one rasterized page of a scanned document.
type PageImage struct {
	PageNumber int
	Data       []byte
}

const rasterDPI = 150

var pageSuffixRe = regexp.MustCompile(`-(\d+)\.jpg$`)

// RasterizePDF renders each page of a PDF to a JPEG using poppler's
// pdftoppm. Output pages come back in page order.
func RasterizePDF(ctx context.Context, filePath string) ([]PageImage, error) {
	bin, err := exec.LookPath("pdftoppm")
	if err != nil {
		return nil, fmt.Errorf("vision: pdftoppm not found in PATH (install poppler-utils): %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "rag-raster-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, bin, "-jpeg", "-r", strconv.Itoa(rasterDPI), filePath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("vision: pdftoppm failed for %s: %w: %s", filePath, err, strings.TrimSpace(string(out)))
	}

	matches, err := filepath.Glob(prefix + "-*.jpg")
	if err != nil {
		return nil, err
	}

	var pages []PageImage
	for _, m := range matches {
		sub := pageSuffixRe.FindStringSubmatch(m)
		if sub == nil {
			continue
		}
		num, err := strconv.Atoi(sub[1])
		if err != nil {
			continue
		}
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, err
		}
		pages = append(pages, PageImage{PageNumber: num, Data: data})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })

	if len(pages) == 0 {
		return nil, fmt.Errorf("vision: pdftoppm produced no pages for %s", filePath)
	}
	return pages, nil
}

// TranscribePDF runs the scanned-document ingestion path: rasterize every
// page and ask a vision model to transcribe each one verbatim.
func TranscribePDF(ctx context.Context, model llms.Model, filePath string) ([]models.Page, error) {
	images, err := RasterizePDF(ctx, filePath)
	if err != nil {
		return nil, err
	}
	log.Info().Str("file", filePath).Int("pages", len(images)).Msg("Rasterized scanned document")

	return TranscribePages(ctx, model, filePath, images), nil
}

// TranscribePages sends each page image to the vision model. A failed or
// blank page is logged and skipped; partial success is acceptable.
func TranscribePages(ctx context.Context, model llms.Model, source string, images []PageImage) []models.Page {
	var pages []models.Page
	for _, img := range images {
		text, err := llmservice.GenerateVision(ctx, model, models.TranscribePrompt, "image/jpeg", img.Data)
		if err != nil {
			log.Warn().Err(err).Str("file", source).Int("page", img.PageNumber).Msg("Skipping page, transcription failed")
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, models.Page{
			Content:    text,
			Source:     source,
			PageNumber: img.PageNumber,
		})
		log.Debug().Str("file", source).Int("page", img.PageNumber).Msg("Transcribed page")
	}
	return pages
}
