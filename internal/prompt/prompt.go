// Package prompt builds the grounded question-answering prompt.
package prompt

import (
	"fmt"
	"strings"

	"docrag/internal/domain"
)

const (
	instruction    = "You are a helpful assistant. Use ONLY the context below to answer the question."
	contextHeader  = "Context:\n"
	questionHeader = "\n\nQuestion: "
	answerFooter   = "\nAnswer:"
)

// Build renders the prompt for query grounded on chunks, in retrieval order.
func Build(query string, chunks []domain.IndexedChunk) string {
	blocks := make([]string, len(chunks))
	for i, c := range chunks {
		blocks[i] = fmt.Sprintf("Source: %s (chunk %d)\n%s", c.Source, c.ChunkID, c.Text)
	}
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\n")
	b.WriteString(contextHeader)
	b.WriteString(strings.Join(blocks, "\n\n"))
	b.WriteString(questionHeader)
	b.WriteString(query)
	b.WriteString(answerFooter)
	return b.String()
}

// Parse splits a prompt produced by Build back into its context passages and
// question. ok is false when p does not have Build's shape.
func Parse(p string) (passages []string, question string, ok bool) {
	start := strings.Index(p, contextHeader)
	end := strings.LastIndex(p, questionHeader)
	if start < 0 || end < start {
		return nil, "", false
	}
	question = strings.TrimSuffix(p[end+len(questionHeader):], answerFooter)
	body := p[start+len(contextHeader) : end]
	for _, block := range strings.Split(body, "\n\n") {
		if strings.HasPrefix(block, "Source: ") {
			if i := strings.IndexByte(block, '\n'); i >= 0 {
				block = block[i+1:]
			} else {
				block = ""
			}
		}
		if strings.TrimSpace(block) != "" {
			passages = append(passages, block)
		}
	}
	return passages, strings.TrimSpace(question), true
}
