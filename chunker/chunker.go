// Package chunker splits raw document text into bounded-size fragments
// suitable for embedding. Splitting is purely token-count based on
// whitespace boundaries, with no sentence or paragraph awareness.
package chunker

import "strings"

const DefaultChunkSize = 500

// Split cuts text into chunks of at most size whitespace-delimited
// words, in original order, with no overlap and no loss. The final
// chunk may be shorter. Empty or blank text yields no chunks.
func Split(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	chunks := make([]string, 0, (len(words)+size-1)/size)
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
