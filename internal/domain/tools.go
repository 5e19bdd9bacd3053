package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ToolDocumentSearch is the only tool name the orchestrator executes.
// Unrecognized names are ignored.
const ToolDocumentSearch = "document_search"

// ToolRequest is a structured instruction to run a named tool during a turn.
// Args stay encoded until the tools stage decodes them in one validation
// step; malformed args degrade to "no search" rather than failing the turn.
type ToolRequest struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// SearchArgs are the decoded arguments of a document_search request.
type SearchArgs struct {
	Query    StringList `json:"query"`
	Filename string     `json:"filename,omitempty"`
	Limit    int        `json:"limit,omitempty"`
}

// StringList accepts either a single JSON string or an array of strings.
// Tool arguments produced by a model arrive in both shapes.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("query must be a string or an array of strings")
	}
	*s = StringList(many)
	return nil
}

func (s StringList) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(s))
}

// NewDocumentSearchRequest builds a document_search request for the query.
func NewDocumentSearchRequest(query string) ToolRequest {
	args, _ := json.Marshal(SearchArgs{Query: StringList{query}})
	return ToolRequest{Name: ToolDocumentSearch, Args: args}
}

// DecodeSearchArgs validates and decodes document_search arguments. It is
// the single decoding step at the tools boundary: anything that does not
// produce at least one non-empty query is a malformed request.
func DecodeSearchArgs(raw json.RawMessage) (SearchArgs, error) {
	var args SearchArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return SearchArgs{}, fmt.Errorf("%w: %v", ErrMalformedToolRequest, err)
	}
	queries := args.Query[:0]
	for _, q := range args.Query {
		if strings.TrimSpace(q) != "" {
			queries = append(queries, q)
		}
	}
	args.Query = queries
	if len(args.Query) == 0 {
		return SearchArgs{}, fmt.Errorf("%w: empty query", ErrMalformedToolRequest)
	}
	return args, nil
}
