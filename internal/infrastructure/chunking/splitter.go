package chunking

import "strings"

// boundary is a preferred cut point searched for within Window runes of the
// chunk end. Boundaries are tried in order.
type boundary struct {
	Marker string
	Window int
}

var boundaries = []boundary{
	{Marker: "?", Window: 1000},
	{Marker: "\n\n", Window: 800},
	{Marker: "\n", Window: 500},
	{Marker: ".", Window: 300},
}

// Splitter cuts long text into overlapping windows, preferring to end a window
// right after a question mark so questions are not split from their answers.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 6000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.ChunkSize {
		if chunk := strings.TrimSpace(text); chunk != "" {
			return []string{chunk}
		}
		return nil
	}

	out := make([]string, 0, len(runes)/s.ChunkSize+1)
	for start := 0; start < len(runes); {
		end := start + s.ChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.cutPoint(runes, start, end)
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}

		next := end - s.Overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

func (s *Splitter) cutPoint(runes []rune, start, end int) int {
	window := string(runes[start:end])
	windowLen := end - start
	for _, b := range boundaries {
		idx := strings.LastIndex(window, b.Marker)
		if idx < 0 {
			continue
		}
		// idx is a byte offset; convert to runes before comparing distances.
		cut := len([]rune(window[:idx])) + len([]rune(b.Marker))
		if windowLen-cut <= b.Window && cut > s.Overlap {
			return start + cut
		}
	}
	return end
}
