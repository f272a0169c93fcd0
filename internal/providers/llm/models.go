package llm

// contextWindows lists token limits for the models this tool targets.
// Unlisted models fall back to a conservative default.
var contextWindows = map[string]int{
	"gpt-4":                    8192,
	"gpt-4-turbo":              128000,
	"gpt-4o":                   128000,
	"gpt-4o-mini":              128000,
	"o1":                       200000,
	"o3-mini":                  200000,
	"claude-3-opus-latest":     200000,
	"claude-3-5-sonnet-latest": 200000,
	"claude-3-5-haiku-latest":  200000,
	"claude-3-7-sonnet-latest": 200000,
}

const defaultContextWindow = 8192

func ContextWindow(model string) int {
	if n, ok := contextWindows[model]; ok {
		return n
	}
	return defaultContextWindow
}

// SummaryModel is the cheaper model each family delegates summarization to.
func SummaryModel(kind Kind) string {
	switch kind {
	case KindAnthropic:
		return "claude-3-5-haiku-latest"
	default:
		return "gpt-4o-mini"
	}
}
