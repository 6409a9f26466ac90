package utils

import (
	"strings"
	"unicode/utf8"
)

// separators tried in order when looking for a natural cut point.
var separators = []string{"\n\n", "\n", " "}

// SplitText splits a long string into chunks of at most 'chunkSize' runes
// with 'overlap' runes carried over between consecutive chunks. Cuts prefer
// generic separators (paragraph break, newline, space) near the window end
// so words stay intact; when no separator is available the cut is strict.
// The next chunk always starts exactly 'overlap' runes before the previous
// cut, so contiguous chunks share exactly that many runes.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	total := len(runes)

	if total <= chunkSize {
		return []string{text}
	}
	if overlap >= chunkSize {
		overlap = 0 // fallback: a full-size overlap would never advance
	}

	var chunks []string
	start := 0
	for start < total {
		end := start + chunkSize
		if end >= total {
			chunks = append(chunks, string(runes[start:total]))
			break
		}

		end = adjustToSeparator(runes, start, end)
		chunks = append(chunks, string(runes[start:end]))
		start = end - overlap
	}

	return chunks
}

// adjustToSeparator pulls the cut back to the last separator in the final
// quarter of the window. Cutting earlier than that loses too much capacity,
// so anything before the floor falls through to a strict cut.
func adjustToSeparator(runes []rune, start, end int) int {
	window := string(runes[start:end])
	floor := (end - start) * 3 / 4

	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		runeIdx := utf8.RuneCountInString(window[:idx+len(sep)])
		if runeIdx > floor {
			return start + runeIdx
		}
	}
	return end
}
