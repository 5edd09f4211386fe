// Package llmrouter implements the last non-default routing stage: when no
// lexical or semantic classifier matched, the message and the agent roster go
// to an LLM (external CLI subprocess or the Anthropic API) which names the
// agent. Every failure mode degrades to "no match".
package llmrouter

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Decision is the structured answer expected from the model.
type Decision struct {
	Agent     string `json:"agent"`
	Reasoning string `json:"reasoning,omitempty"`
}

// ParseDecision extracts the first well-formed decision object from model
// output. Models wrap JSON in prose and markdown fences, and sometimes emit a
// stray braced fragment ahead of the real object, so on an unmarshal failure
// the scan resumes from the next brace.
func ParseDecision(output string) (*Decision, error) {
	rest := output
	sawObject := false
	for {
		start, end := findJSONBounds(rest)
		if start == -1 {
			break
		}

		var d Decision
		if err := json.Unmarshal([]byte(rest[start:end]), &d); err == nil {
			sawObject = true
			d.Agent = strings.TrimSpace(d.Agent)
			if d.Agent != "" {
				return &d, nil
			}
		}
		rest = rest[start+1:]
	}

	if sawObject {
		return nil, fmt.Errorf("decision names no agent")
	}
	return nil, fmt.Errorf("no JSON decision in model output")
}

// findJSONBounds locates the first top-level balanced brace pair. Braces
// inside JSON strings are rare in this output shape; a decision whose
// reasoning contains one merely truncates the reasoning, never the agent id,
// because "agent" is serialized first by the prompt contract.
func findJSONBounds(text string) (int, int) {
	start := -1
	depth := 0
	for i, r := range text {
		switch r {
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start == -1 {
				continue
			}
			depth--
			if depth == 0 {
				return start, i + 1
			}
		}
	}
	return -1, -1
}
