package rag

import (
	"strings"

	"github.com/papercomputeco/seekchat/pkg/vector"
)

// DefaultQATemplate asks the model to answer only from the retrieved
// context. {context} and {query} are replaced.
const DefaultQATemplate = `Context information is below.
---------------------
{context}
---------------------
Given the context information and not prior knowledge, answer the query.
Query: {query}
Answer: `

// BuildPrompt fills template with the retrieved chunks and the question.
func BuildPrompt(template, query string, results []vector.QueryResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Source != "" {
			parts = append(parts, "file_path: "+r.Source+"\n\n"+r.Content)
			continue
		}
		parts = append(parts, r.Content)
	}

	return strings.NewReplacer(
		"{context}", strings.Join(parts, "\n\n"),
		"{query}", query,
	).Replace(template)
}
