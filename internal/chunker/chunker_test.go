package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"pdf-rag-chat/internal/models"
)

func TestSplitPage_ShortContentSingleChunk(t *testing.T) {
	c := New(1000, 100)
	page := models.Page{Content: "Paris is the capital of France.", Source: "facts.pdf", PageNumber: 1}

	chunks := c.SplitPage(page)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "Paris is the capital of France." {
		t.Fatalf("unexpected chunk content: %q", chunks[0].Content)
	}
	if chunks[0].Source != "facts.pdf" || chunks[0].PageNumber != 1 || chunks[0].ChunkIndex != 0 {
		t.Fatalf("metadata not copied: %+v", chunks[0])
	}
}

func TestSplitPage_NeverExceedsSize(t *testing.T) {
	c := New(100, 20)
	page := models.Page{Content: strings.Repeat("word ", 500), Source: "a.txt", PageNumber: 1}

	chunks := c.SplitPage(page)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch.Content) > 100 {
			t.Fatalf("chunk %d exceeds size: %d chars", i, len(ch.Content))
		}
	}
}

func TestSplitPage_Deterministic(t *testing.T) {
	c := New(80, 15)
	page := models.Page{Content: strings.Repeat("The quick brown fox jumps over the lazy dog. ", 30), Source: "b.txt"}

	first := c.SplitPage(page)
	second := c.SplitPage(page)

	if len(first) != len(second) {
		t.Fatalf("chunk count differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitPage_PrefersSentenceBoundary(t *testing.T) {
	c := New(50, 10)
	content := "First sentence here. Second sentence follows now. Third one closes it out."
	page := models.Page{Content: content, Source: "c.txt"}

	chunks := c.SplitPage(page)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Content, ".") {
		t.Fatalf("expected first chunk to end at a sentence, got %q", chunks[0].Content)
	}
}

func TestSplitPage_SequentialChunkIndexes(t *testing.T) {
	c := New(60, 10)
	page := models.Page{Content: strings.Repeat("some text and more text. ", 20), Source: "d.txt", PageNumber: 3}

	chunks := c.SplitPage(page)

	for i, ch := range chunks {
		if ch.ChunkIndex != i {
			t.Fatalf("chunk %d has index %d", i, ch.ChunkIndex)
		}
		if ch.PageNumber != 3 {
			t.Fatalf("chunk %d lost page number: %d", i, ch.PageNumber)
		}
	}
}

func TestSplitPage_EmptyContent(t *testing.T) {
	c := New(100, 10)
	chunks := c.SplitPage(models.Page{Content: "   \n  ", Source: "e.txt"})
	if len(chunks) != 0 {
		t.Fatalf("expected 0 chunks for blank content, got %d", len(chunks))
	}
}

func TestSplitPages_NoChunkCrossesPages(t *testing.T) {
	c := New(1000, 100)
	pages := []models.Page{
		{Content: "Page one text.", Source: "f.pdf", PageNumber: 1},
		{Content: "Page two text.", Source: "f.pdf", PageNumber: 2},
	}

	chunks := c.SplitPages(pages)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].PageNumber != 1 || chunks[1].PageNumber != 2 {
		t.Fatalf("page boundaries not preserved: %+v", chunks)
	}
	if strings.Contains(chunks[0].Content, "two") {
		t.Fatalf("chunk crossed a page boundary: %q", chunks[0].Content)
	}
}

func TestSplitPage_MultiByteRunesStayIntact(t *testing.T) {
	// no spaces and no ASCII sentence ends, so every cut is a hard cut
	c := New(100, 20)
	page := models.Page{Content: strings.Repeat("日本語のテキストが続きます", 40), Source: "g.txt", PageNumber: 1}

	chunks := c.SplitPage(page)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if !utf8.ValidString(ch.Content) {
			t.Fatalf("chunk %d is not valid UTF-8: %q", i, ch.Content)
		}
		if len(ch.Content) > 100 {
			t.Fatalf("chunk %d exceeds size: %d bytes", i, len(ch.Content))
		}
	}
}

func TestSplitPage_MixedScriptsValidChunks(t *testing.T) {
	c := New(60, 10)
	page := models.Page{Content: strings.Repeat("Héllo wörld, naïve café. ", 30), Source: "h.txt"}

	for i, ch := range c.SplitPage(page) {
		if !utf8.ValidString(ch.Content) {
			t.Fatalf("chunk %d is not valid UTF-8: %q", i, ch.Content)
		}
	}
}

func TestNew_InvalidSettingsFallBack(t *testing.T) {
	c := New(0, -5)
	if c.Size <= 0 || c.Overlap < 0 {
		t.Fatalf("invalid fallback settings: %+v", c)
	}
	c = New(100, 100)
	if c.Overlap >= c.Size {
		t.Fatalf("overlap not clamped below size: %+v", c)
	}
}
