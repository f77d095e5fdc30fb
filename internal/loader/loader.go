package loader

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"pdf-rag-chat/internal/config"
	"pdf-rag-chat/internal/models"
	"pdf-rag-chat/internal/parser"
	"pdf-rag-chat/internal/rag"
	"pdf-rag-chat/internal/vision"
)

// Loader reads configured sources into pages. The vision model is only
// touched for sources with the vision strategy, so it may be nil in a
// text-only setup.
type Loader struct {
	visionModel llms.Model
}

func New(visionModel llms.Model) *Loader {
	return &Loader{visionModel: visionModel}
}

// Load walks the sources in input order. A missing file or a failed load is
// logged as a skip and the batch continues; the only terminal condition is
// that nothing loaded at all.
func (l *Loader) Load(ctx context.Context, sources []config.Source) ([]models.Page, error) {
	var pages []models.Page
	loaded := 0
	for _, src := range sources {
		if _, err := os.Stat(src.Path); err != nil {
			log.Warn().Str("file", src.Path).Msg("Skipping source, file not found")
			continue
		}

		var (
			filePages []models.Page
			err       error
		)
		switch src.Strategy {
		case config.StrategyVision:
			filePages, err = vision.TranscribePDF(ctx, l.visionModel, src.Path)
		default:
			filePages, err = parser.Parse(src.Path)
		}
		if err != nil {
			log.Error().Err(err).Str("file", src.Path).Msg("Skipping source, load failed")
			continue
		}
		if len(filePages) == 0 {
			log.Warn().Str("file", src.Path).Msg("Skipping source, no text extracted")
			continue
		}

		pages = append(pages, filePages...)
		loaded++
		log.Info().Str("file", src.Path).Int("pages", len(filePages)).Msg("Loaded source")
	}

	if len(pages) == 0 {
		return nil, rag.NewNoDocumentsError("no documents loaded from configured sources")
	}
	log.Info().Int("files", loaded).Int("pages", len(pages)).Msg("Finished loading sources")
	return pages, nil
}
