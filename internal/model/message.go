package model

// Message roles in the rolling LLM context.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in the conversational context sent to the model.
// System messages are synthesized per turn (scope hints, search context)
// and never persisted as history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SearchHit is one normalized web search result. Content holds either a
// provider snippet or, after article extraction, the full page text.
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// DedupeHits removes hits with empty or repeated URLs, keeping first
// occurrence order.
func DedupeHits(hits []SearchHit) []SearchHit {
	seen := make(map[string]bool, len(hits))
	out := make([]SearchHit, 0, len(hits))
	for _, h := range hits {
		if h.URL == "" || seen[h.URL] {
			continue
		}
		seen[h.URL] = true
		if h.Title == "" {
			h.Title = "Fonte"
		}
		out = append(out, h)
	}
	return out
}
