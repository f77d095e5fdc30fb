package chunker

import (
	"strings"
	"unicode/utf8"

	"pdf-rag-chat/internal/models"
)

// Chunker splits pages into overlapping windows of at most Size characters,
// stepping by Size-Overlap. Overlap must be smaller than Size; the
// constructor falls back to sane values otherwise so a zero config cannot
// produce an infinite loop.
type Chunker struct {
	Size    int
	Overlap int
}

const (
	defaultSize    = 1000
	defaultOverlap = 100
)

func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = defaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Chunker{Size: size, Overlap: overlap}
}

// SplitPages chunks each page independently. No chunk crosses a page
// boundary; source and page number are copied onto every derived chunk.
func (c *Chunker) SplitPages(pages []models.Page) []models.Chunk {
	var chunks []models.Chunk
	for _, page := range pages {
		chunks = append(chunks, c.SplitPage(page)...)
	}
	return chunks
}

// SplitPage produces the chunk sequence for a single page. Deterministic:
// the same content and settings always yield the same chunks.
func (c *Chunker) SplitPage(page models.Page) []models.Chunk {
	var chunks []models.Chunk
	for i, content := range c.split(page.Content) {
		chunks = append(chunks, models.Chunk{
			Content:    content,
			Source:     page.Source,
			PageNumber: page.PageNumber,
			ChunkIndex: i,
		})
	}
	return chunks
}

func (c *Chunker) split(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if len(content) <= c.Size {
		return []string{content}
	}

	var out []string
	start := 0
	for start < len(content) {
		end := min(start+c.Size, len(content))
		if end < len(content) {
			end = runeFloor(content, breakPoint(content, start, end))
			if end <= start {
				// window narrower than one rune, cut after it
				_, w := utf8.DecodeRuneInString(content[start:])
				end = start + w
			}
		}
		chunk := strings.TrimSpace(content[start:end])
		if chunk != "" {
			out = append(out, chunk)
		}
		if end >= len(content) {
			break
		}
		// step from the actual break point so nothing between windows is
		// lost; overlap stays at most Overlap characters
		next := runeFloor(content, end-c.Overlap)
		if next <= start {
			next = runeFloor(content, start+c.Size-c.Overlap)
		}
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

// breakPoint looks back from the hard cut for a natural boundary, preferring
// a paragraph break, then a sentence end, then a word gap. The search is
// limited to the last 20% of the window so short chunks are not produced.
func breakPoint(content string, start, end int) int {
	lookBack := max((end-start)/5, 1)
	floor := end - lookBack
	if floor < start+1 {
		floor = start + 1
	}

	if i := strings.LastIndex(content[floor:end], "\n\n"); i >= 0 {
		return floor + i + 2
	}
	for i := end - 1; i >= floor; i-- {
		if isSentenceEnd(content, i) {
			return i + 1
		}
	}
	for i := end - 1; i >= floor; i-- {
		if content[i] == ' ' || content[i] == '\n' || content[i] == '\t' {
			return i + 1
		}
	}
	return end
}

// runeFloor pulls an index back to the nearest rune start so a cut never
// lands inside a multi-byte rune.
func runeFloor(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func isSentenceEnd(content string, i int) bool {
	switch content[i] {
	case '.', '!', '?':
	default:
		return false
	}
	// require trailing whitespace so decimals and abbreviations mid-word
	// do not count
	return i+1 < len(content) && (content[i+1] == ' ' || content[i+1] == '\n')
}
