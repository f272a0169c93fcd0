package llm

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

// CountTokens counts with the cl100k_base encoding when available and falls
// back to a words*4/3 estimate when the encoding cannot be loaded (tiktoken
// fetches its BPE table on first use).
func CountTokens(text string) int {
	if text == "" {
		return 0
	}

	tkOnce.Do(func() {
		if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			tk = enc
		}
	})

	if tk != nil {
		return len(tk.Encode(text, nil, nil))
	}
	return approxTokens(text)
}

func approxTokens(text string) int {
	words := len(strings.Fields(text))
	return words + words/3
}

// TruncateForSummary keeps the head and tail of oversized content so the
// summary model sees how the text starts and ends.
func TruncateForSummary(content string, headWords, tailWords int) string {
	words := strings.Fields(content)
	if len(words) <= headWords+tailWords {
		return content
	}

	head := strings.Join(words[:headWords], " ")
	tail := strings.Join(words[len(words)-tailWords:], " ")
	return head + "\n...\n" + tail
}
