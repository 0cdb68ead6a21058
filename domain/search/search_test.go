package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Query
	}{
		{
			name:  "Terms only",
			input: "/find release notes",
			expected: Query{
				RawInput: "/find release notes", Terms: "release notes", Limit: DefaultLimit,
			},
		},
		{
			name:  "Every flag",
			input: `/find "invoice" --room general --author alice --lang FR --limit 5`,
			expected: Query{
				RawInput: `/find "invoice" --room general --author alice --lang FR --limit 5`,
				Terms:    "invoice", Room: "general", Author: "alice", Language: "fr", Limit: 5,
			},
		},
		{
			name:  "Limit is capped and invalid limit ignored",
			input: "deploy --limit 1000",
			expected: Query{
				RawInput: "deploy --limit 1000", Terms: "deploy", Limit: MaxLimit,
			},
		},
		{
			name:  "Dangling flag is a term",
			input: "deploy --room",
			expected: Query{
				RawInput: "deploy --room", Terms: "deploy --room", Limit: DefaultLimit,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, NewSearchQuery(tt.input))
		})
	}
}

func TestQuery_IsEmpty(t *testing.T) {
	req := require.New(t)

	req.True(NewSearchQuery("/find").IsEmpty())
	req.False(NewSearchQuery("/find --room ops").IsEmpty())
}
