package agents

// Builtin agent ids. These three are permanently protected from deletion so
// the pipeline always has a terminal fallback and the two core dev personas.
const (
	BuiltinGeneralID    = "general"
	BuiltinCodeReviewID = "code-review"
	BuiltinDebugID      = "debug"
)

// protectedIDs guards builtin agents against Remove.
var protectedIDs = map[string]bool{
	BuiltinGeneralID:    true,
	BuiltinCodeReviewID: true,
	BuiltinDebugID:      true,
}

// IsProtected reports whether the agent id is a protected builtin.
func IsProtected(id string) bool {
	return protectedIDs[id]
}

// BuiltinAgents returns fresh definitions of the three builtin agents, in
// registration order. The registry seeds any of these that the backing store
// does not already hold.
func BuiltinAgents() []*Agent {
	return []*Agent{
		{
			ID:          BuiltinGeneralID,
			Name:        "범용 어시스턴트",
			Description: "General-purpose assistant for questions, explanations and anything no specialist covers.",
			Keywords:    []string{"도와줘", "help", "질문", "안녕"},
			SystemPrompt: "You are a helpful general-purpose assistant for a Korean development team. " +
				"Answer in the language of the question.",
			Model:        "claude-sonnet-4-5",
			MaxTokens:    4096,
			AllowedTools: []string{"Read", "Grep", "WebSearch"},
			Enabled:      true,
			Priority:     0,
			IsDefault:    true,
			Examples: []string{
				"이 개념 좀 설명해줘",
				"what does this acronym mean?",
				"회의록 요약해줘",
			},
		},
		{
			ID:          BuiltinCodeReviewID,
			Name:        "코드 리뷰어",
			Description: "Reviews merge requests and diffs: style, correctness, security, test coverage.",
			Keywords:    []string{"리뷰", "review", "코드리뷰", "mr", "pr"},
			SystemPrompt: "You are a meticulous code reviewer. Point out correctness, security and style " +
				"issues with file and line references.",
			Model:        "claude-sonnet-4-5",
			MaxTokens:    8192,
			AllowedTools: []string{"Read", "Grep", "Bash", "mcp__gitlab__*"},
			Enabled:      true,
			Priority:     100,
			Examples: []string{
				"이 MR 리뷰해줘",
				"please review this pull request",
				"diff 좀 봐줘",
			},
		},
		{
			ID:          BuiltinDebugID,
			Name:        "디버거",
			Description: "Diagnoses bugs, errors, crashes and stack traces; proposes and applies fixes.",
			Keywords:    []string{"버그", "디버그", "bug", "debug", "에러", "error"},
			SystemPrompt: "You are a debugging specialist. Reproduce, isolate and fix the reported " +
				"problem; show the failing path before the fix.",
			Model:        "claude-sonnet-4-5",
			MaxTokens:    8192,
			AllowedTools: []string{"Read", "Grep", "Bash", "Edit"},
			Enabled:      true,
			Priority:     100,
			Examples: []string{
				"NullPointerException이 계속 나요",
				"this endpoint crashes under load",
				"에러 로그 좀 봐줘",
			},
		},
	}
}
