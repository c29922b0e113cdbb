package postprocess

import "testing"

func TestRemoveThinkingBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no thinking blocks",
			input:    "Dear Anna, thank you for your time.",
			expected: "Dear Anna, thank you for your time.",
		},
		{
			name:     "think block",
			input:    "<think>The user wants a rejection</think>Dear Anna,",
			expected: "Dear Anna,",
		},
		{
			name:     "reasoning block in the middle",
			input:    "Start<reasoning>tone should be warm</reasoning>End",
			expected: "StartEnd",
		},
		{
			name:     "multiple blocks",
			input:    "<thinking>First</thinking>middle<reflection>Second</reflection>",
			expected: "middle",
		},
		{
			name:     "truncated block",
			input:    "Before<thinking>Incomplete",
			expected: "Before",
		},
		{
			name:     "case insensitive and multiline",
			input:    "<THINK>line one\nline two</THINK>Reply",
			expected: "Reply",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := removeThinkingBlocks(tt.input); got != tt.expected {
				t.Errorf("removeThinkingBlocks(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRemovePreamble(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no preamble",
			input:    "Dear Anna, thank you.",
			expected: "Dear Anna, thank you.",
		},
		{
			name:     "here is the reply",
			input:    "Here is the reply: Dear Anna, thank you.",
			expected: "Dear Anna, thank you.",
		},
		{
			name:     "here's your polished email",
			input:    "Here's your polished email:\nDear Anna,",
			expected: "Dear Anna,",
		},
		{
			name:     "sure preamble",
			input:    "Sure, here is a draft message: Hello Anna",
			expected: "Hello Anna",
		},
		{
			name:     "russian preamble",
			input:    "Вот готовый ответ: Здравствуйте, Анна!",
			expected: "Здравствуйте, Анна!",
		},
		{
			name:     "spanish preamble",
			input:    "Aquí tienes la respuesta: Hola, Ana.",
			expected: "Hola, Ana.",
		},
		{
			name:     "not at start",
			input:    "Dear Anna, here is the reply: none",
			expected: "Dear Anna, here is the reply: none",
		},
		{
			name:     "without colon",
			input:    "Here is the reply we promised you last week.",
			expected: "Here is the reply we promised you last week.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := removePreamble(tt.input); got != tt.expected {
				t.Errorf("removePreamble(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRemoveQuoteWrapping(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"single char", "\"", "\""},
		{"no quotes", "Hello", "Hello"},
		{"double quotes", `"Hello Anna"`, "Hello Anna"},
		{"guillemets", "«Здравствуйте»", "Здравствуйте"},
		{"curly double quotes", "“Hello”", "Hello"},
		{"curly single quotes", "‘Hello’", "Hello"},
		{"unmatched quotes", "\"Hello'", "\"Hello'"},
		{"inner quotes kept", `We said "yes" today`, `We said "yes" today`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := removeQuoteWrapping(tt.input); got != tt.expected {
				t.Errorf("removeQuoteWrapping(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"whitespace", "  \n ", ""},
		{"clean text", "Dear Anna,\n\nThank you.", "Dear Anna,\n\nThank you."},
		{
			name:     "think + preamble + quotes",
			input:    "<think>plan</think>Here is the reply: \"Dear Anna, thank you.\"",
			expected: "Dear Anna, thank you.",
		},
		{
			name:     "only reasoning",
			input:    "<reasoning>cut off before answering",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
