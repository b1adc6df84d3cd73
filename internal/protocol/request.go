package protocol

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Inbound discriminators.
const (
	SearchRequestType = "search:request"
	ActionSubscribe   = "subscribe"
)

// Search result bounds.
const (
	DefaultMaxResults = 25
	MaxMaxResults     = 100
)

// RequestKind identifies a parsed inbound request.
type RequestKind int

const (
	RequestSubscribe RequestKind = iota + 1
	RequestSearch
)

// Request is a validated inbound message.
type Request struct {
	Kind   RequestKind
	Search SearchRequest // Set when Kind == RequestSearch
}

// SearchRequest is a validated search.
type SearchRequest struct {
	Query      string
	RequestID  string
	MaxResults int
}

// ParseRequest validates one inbound frame. Checks run in a fixed order and
// the first violation is the only error reported:
// parse, discriminator, query, requestID, maxResults.
func ParseRequest(raw []byte) (Request, *Error) {
	if !gjson.ValidBytes(raw) {
		return Request{}, NewError(CodeInvalidJSON, "").WithOriginal(raw)
	}

	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return Request{}, NewError(CodeInvalidVariantField, "")
	}

	if action := root.Get("action"); action.Type == gjson.String && action.Str == ActionSubscribe {
		return Request{Kind: RequestSubscribe}, nil
	}

	// Best-effort correlation id for errors raised before requestID is checked.
	var correlation string
	if rid := root.Get("requestID"); rid.Type == gjson.String {
		correlation = rid.Str
	}

	discriminator := root.Get("type")
	if !discriminator.Exists() {
		discriminator = root.Get("event")
	}
	if discriminator.Type != gjson.String || discriminator.Str != SearchRequestType {
		return Request{}, NewError(CodeInvalidVariantField, correlation)
	}

	query := root.Get("query")
	if query.Type != gjson.String || strings.TrimSpace(query.Str) == "" {
		return Request{}, NewError(CodeInvalidQuery, correlation)
	}

	rid := root.Get("requestID")
	if rid.Type != gjson.String || strings.TrimSpace(rid.Str) == "" {
		return Request{}, NewError(CodeInvalidRequestID, correlation)
	}

	maxResults := DefaultMaxResults
	if mr := root.Get("maxResults"); mr.Exists() && mr.Type != gjson.Null {
		n, ok := validMaxResults(mr)
		if !ok {
			return Request{}, NewError(CodeInvalidMaxResults, rid.Str)
		}
		maxResults = n
	}

	return Request{
		Kind: RequestSearch,
		Search: SearchRequest{
			Query:      query.Str,
			RequestID:  rid.Str,
			MaxResults: maxResults,
		},
	}, nil
}

// ParseSearchParams validates a search given as URL query parameters.
// There is no requestID on this surface.
func ParseSearchParams(query, maxResults string) (SearchRequest, *Error) {
	if strings.TrimSpace(query) == "" {
		return SearchRequest{}, NewError(CodeInvalidQuery, "")
	}

	n := DefaultMaxResults
	if maxResults != "" {
		v, err := strconv.Atoi(maxResults)
		if err != nil || v < 1 || v > MaxMaxResults {
			return SearchRequest{}, NewError(CodeInvalidMaxResults, "")
		}
		n = v
	}

	return SearchRequest{Query: query, MaxResults: n}, nil
}

func validMaxResults(r gjson.Result) (int, bool) {
	if r.Type != gjson.Number {
		return 0, false
	}
	v := r.Num
	if v != math.Trunc(v) || v < 1 || v > MaxMaxResults {
		return 0, false
	}
	return int(v), true
}
