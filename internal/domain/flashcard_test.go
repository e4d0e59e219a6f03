package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCardStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected CardStyle
		wantErr  bool
	}{
		{input: "qa", expected: CardStyleQA},
		{input: "Q&A", expected: CardStyleQA},
		{input: " term_definition ", expected: CardStyleTermDefinition},
		{input: "Term/Definition", expected: CardStyleTermDefinition},
		{input: "MCQ", expected: CardStyleMCQ},
		{input: "cloze", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			style, err := ParseCardStyle(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCardStyle)
				assert.False(t, style.IsValid())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, style)
			assert.True(t, style.IsValid())
		})
	}
}

func TestCardStyleLabelsAndColumns(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Q&A", CardStyleQA.Label())
	assert.Equal(t, "Term/Definition", CardStyleTermDefinition.Label())
	assert.Equal(t, "MCQ", CardStyleMCQ.Label())

	assert.Equal(t, []string{"Question", "Answer"}, CardStyleQA.Columns())
	assert.Equal(t, []string{"Term", "Definition"}, CardStyleTermDefinition.Columns())
	assert.Equal(t, []string{"Question", "Options", "Answer"}, CardStyleMCQ.Columns())

	for _, s := range CardStyles {
		label, err := ParseCardStyle(s.Label())
		require.NoError(t, err)
		assert.Equal(t, s, label)
	}
}

func TestFlashcardFields(t *testing.T) {
	t.Parallel()

	td := Flashcard{Style: CardStyleTermDefinition, Question: "Latency", Answer: "Delay before transfer"}
	assert.Equal(t, "Latency", td.Term())
	assert.Equal(t, "Delay before transfer", td.Definition())
	assert.Equal(t, []string{"Latency", "Delay before transfer"}, td.Fields())

	mcq := Flashcard{Style: CardStyleMCQ, Question: "2+2?", Options: "a) 3 b) 4", Answer: "b"}
	assert.Equal(t, []string{"2+2?", "a) 3 b) 4", "b"}, mcq.Fields())
}
