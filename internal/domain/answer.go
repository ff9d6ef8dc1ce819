package domain

// NoAnswerText is the canonical reply when no retrieved chunk clears the
// similarity threshold. Returned with zero confidence, never as an error.
const NoAnswerText = "No relevant information found in the document."

// Answer is a retrieval-grounded answer to a question.
type Answer struct {
	Text       string
	Confidence float64  // top retrieved similarity, clamped to [0,1]
	Sources    []string // chunk ids in assembly order
}

// StructuredSummary is the sectioned extractive summary of a document.
type StructuredSummary struct {
	Overview    string
	KeyFindings []string
	Figures     []string
	Keywords    []string
}
