package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(out, " ")
}

func TestSplitChunkCount(t *testing.T) {
	cases := []struct {
		words int
		size  int
		want  int
	}{
		{0, 500, 0},
		{1, 500, 1},
		{500, 500, 1},
		{501, 500, 2},
		{1200, 500, 3},
		{1000, 500, 2},
	}
	for _, tc := range cases {
		chunks := Split(words(tc.words), tc.size)
		assert.Len(t, chunks, tc.want, "W=%d L=%d", tc.words, tc.size)
	}
}

func TestSplitPreservesWordSequence(t *testing.T) {
	text := "one  two\tthree\nfour five six seven"
	chunks := Split(text, 3)
	require.Len(t, chunks, 3)

	joined := strings.Fields(strings.Join(chunks, " "))
	assert.Equal(t, strings.Fields(text), joined)
	assert.Equal(t, "seven", chunks[2])
}

func TestSplitEmptyInput(t *testing.T) {
	assert.Nil(t, Split("", 500))
	assert.Nil(t, Split("   \n\t  ", 500))
}

func TestSplitDefaultsSize(t *testing.T) {
	chunks := Split(words(DefaultChunkSize+1), 0)
	assert.Len(t, chunks, 2)
}
