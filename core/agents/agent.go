// Package agents holds the agent model and the in-memory registry the
// routing pipeline reads from. The registry is the cache of record for
// routing; a backing Store collaborator owns durable persistence.
package agents

import (
	"strings"

	"github.com/gobwas/glob"
)

// Agent is a named, configured AI persona that can be selected to handle a
// message.
type Agent struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	Description      string   `json:"description" yaml:"description"`
	Keywords         []string `json:"keywords" yaml:"keywords"`
	SystemPrompt     string   `json:"system_prompt" yaml:"system_prompt"`
	Model            string   `json:"model" yaml:"model"`
	MaxTokens        int      `json:"max_tokens" yaml:"max_tokens"`
	AllowedTools     []string `json:"allowed_tools" yaml:"allowed_tools"`
	WorkingDirectory string   `json:"working_directory,omitempty" yaml:"working_directory,omitempty"`
	Enabled          bool     `json:"enabled" yaml:"enabled"`
	Priority         int      `json:"priority" yaml:"priority"`
	Examples         []string `json:"examples,omitempty" yaml:"examples,omitempty"`
	ProjectID        string   `json:"project_id,omitempty" yaml:"project_id,omitempty"`

	// IsDefault marks the terminal fallback agent.
	IsDefault bool `json:"is_default,omitempty" yaml:"is_default,omitempty"`

	// compiled tool patterns, built lazily from AllowedTools
	toolGlobs []glob.Glob
}

// Clone returns a deep copy. Routing hands out clones so a concurrent
// administrative update never mutates a match already returned to a caller.
func (a *Agent) Clone() *Agent {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Keywords = append([]string(nil), a.Keywords...)
	clone.AllowedTools = append([]string(nil), a.AllowedTools...)
	clone.Examples = append([]string(nil), a.Examples...)
	// Compiled patterns are immutable once built; clones share them.
	return &clone
}

// CompileTools precompiles the AllowedTools glob patterns. The registry calls
// this under its write lock so readers never observe a partial compile.
func (a *Agent) CompileTools() {
	a.toolGlobs = compileToolGlobs(a.AllowedTools)
}

// ToolAllowed reports whether the tool name matches any AllowedTools pattern.
// Patterns are globs ("Bash", "mcp__*", "Read*"); an empty list denies all.
func (a *Agent) ToolAllowed(tool string) bool {
	if a == nil || tool == "" {
		return false
	}
	globs := a.toolGlobs
	if globs == nil {
		globs = compileToolGlobs(a.AllowedTools)
	}
	for _, g := range globs {
		if g.Match(tool) {
			return true
		}
	}
	return false
}

func compileToolGlobs(patterns []string) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			// Invalid pattern degrades to literal comparison.
			g = glob.MustCompile(glob.QuoteMeta(p))
		}
		globs = append(globs, g)
	}
	return globs
}

// HasKeyword reports whether the agent declares the keyword, case-insensitive.
func (a *Agent) HasKeyword(keyword string) bool {
	for _, k := range a.Keywords {
		if strings.EqualFold(k, keyword) {
			return true
		}
	}
	return false
}

// Validate reports whether the agent definition is usable.
func (a *Agent) Validate() bool {
	return a != nil && strings.TrimSpace(a.ID) != "" && strings.TrimSpace(a.Name) != ""
}
