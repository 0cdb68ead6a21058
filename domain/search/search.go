package search

import (
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Query represents the structured parameters of a chat search.
// It decouples the raw chat input from the index requirements.
type Query struct {
	RawInput string // The original input from the user
	Terms    string // The text matched against message content
	Room     string
	Author   string
	Language string // ISO 639-1 code as detected at indexing time
	Limit    int
}

// NewSearchQuery parses a raw string with command-line style arguments.
// Example: /find "invoice" --room general --author alice --limit 5
func NewSearchQuery(input string) Query {
	query := Query{
		RawInput: input,
		Limit:    DefaultLimit,
	}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]
			switch key {
			case "room":
				query.Room = val
			case "author":
				query.Author = val
			case "lang":
				query.Language = strings.ToLower(val)
			case "limit":
				if n, err := strconv.Atoi(val); err == nil && n > 0 {
					query.Limit = min(n, MaxLimit)
				}
			}
			i++ // Skip the value part in next iteration
			continue
		}

		// Commands like /find are not search terms
		if !strings.HasPrefix(part, "/") {
			textTerms = append(textTerms, strings.Trim(part, `"`))
		}
	}

	query.Terms = strings.TrimSpace(strings.Join(textTerms, " "))
	return query
}

func (q Query) IsEmpty() bool {
	return q.Terms == "" && q.Room == "" && q.Author == "" && q.Language == ""
}
