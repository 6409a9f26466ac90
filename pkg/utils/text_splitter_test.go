package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInputIsSingleChunk(t *testing.T) {
	text := "short text"
	chunks := SplitText(text, 1024, 20)
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("chunks = %v, want single unchanged chunk", chunks)
	}
}

func TestSplitTextProducesExactOverlap(t *testing.T) {
	// No separators, so every cut is strict and the overlap is exact.
	text := strings.Repeat("a", 1000) + strings.Repeat("b", 1048)
	chunks := SplitText(text, 1024, 20)

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		tail := string(prev[len(prev)-20:])
		head := string(cur[:20])
		if tail != head {
			t.Errorf("chunk %d does not start with the previous 20-rune tail", i)
		}
	}
}

func TestSplitTextRespectsChunkSize(t *testing.T) {
	text := strings.Repeat("word and more filler text ", 500)
	chunks := SplitText(text, 1024, 20)

	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > 1024 {
			t.Errorf("chunk %d has %d runes, limit 1024", i, n)
		}
	}
}

func TestSplitTextPrefersSeparatorCut(t *testing.T) {
	// A space sits inside the final quarter of the first window, so the
	// cut must land after it instead of mid-word.
	text := strings.Repeat("x", 1000) + " " + strings.Repeat("y", 1200)
	chunks := SplitText(text, 1024, 20)

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], " ") {
		t.Errorf("first chunk should end at the separator, got tail %q", chunks[0][len(chunks[0])-10:])
	}
}

func TestSplitTextCoversWholeInput(t *testing.T) {
	text := strings.Repeat("0123456789", 300)
	chunks := SplitText(text, 256, 16)

	if !strings.HasPrefix(chunks[0], "0123456789") {
		t.Error("first chunk does not start at the beginning")
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Error("last chunk does not end at the end of input")
	}
}

func TestSplitTextDegenerateOverlapStillAdvances(t *testing.T) {
	text := strings.Repeat("z", 300)
	chunks := SplitText(text, 100, 100)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3 with overlap disabled", len(chunks))
	}
}
