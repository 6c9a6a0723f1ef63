package service

import (
	"fmt"
	"strings"
)

const systemInstruction = `You are an assistant that answers questions using only the numbered context passages below.
Cite the passages you used with their bracketed numbers, e.g. [1] or [2].
If the passages do not contain the information needed to answer, say that you do not have enough information. Do not invent facts.`

// NoInformationAnswer is returned verbatim when retrieval yields no
// hits; no generation call is made in that case.
const NoInformationAnswer = "No relevant information found for this question."

// composePrompt builds the grounded prompt. The [N] markers are
// 1-indexed and match the citation order exactly.
func composePrompt(contexts []string, question string) string {
	var sb strings.Builder
	sb.WriteString(systemInstruction)
	sb.WriteString("\n\nContext:\n")
	for i, text := range contexts {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, text)
	}
	sb.WriteString("\nQuestion:\n")
	sb.WriteString(question)
	sb.WriteString("\nAnswer:")
	return sb.String()
}
