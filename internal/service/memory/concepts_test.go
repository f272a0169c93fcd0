package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractConcepts(t *testing.T) {
	e := NewConceptExtractor()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "stopwords and short words dropped",
			text: "what is the it an of",
			want: nil,
		},
		{
			name: "frequency wins",
			text: "python python python goroutine goroutine channels",
			want: []string{"python", "goroutine", "channels"},
		},
		{
			name: "ties broken alphabetically",
			text: "zebra apple",
			want: []string{"apple", "zebra"},
		},
		{
			name: "case folded and punctuation split",
			text: "Python, PYTHON; python!",
			want: []string{"python"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ExtractConcepts(tt.text))
		})
	}
}

func TestExtractConceptsLimit(t *testing.T) {
	e := NewConceptExtractor()

	got := e.ExtractConcepts("alpha beta gamma delta epsilon zeta eta theta")
	assert.Len(t, got, maxConcepts)
}
