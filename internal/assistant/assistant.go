// Package assistant talks to the language model that decomposes free text
// into tasks and steps, and makes sense of what it sends back.
package assistant

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Completer sends one rule plus payload to a model and returns its raw reply.
type Completer interface {
	Complete(ctx context.Context, rule, payload string) (string, error)
}

// Payload renders v for the model: strings pass through, anything else is
// encoded as JSON.
func Payload(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// Kind tells how a reply can be used.
type Kind int

// Reply kinds.
const (
	// Structured replies carry a JSON object.
	Structured Kind = iota
	// Unstructured replies are non-empty text with no usable JSON.
	Unstructured
	// Failure covers transport errors and empty replies.
	Failure
)

func (k Kind) String() string {
	switch k {
	case Structured:
		return "structured"
	case Unstructured:
		return "unstructured"
	default:
		return "failure"
	}
}

// Response is a classified model reply.
type Response struct {
	Kind Kind
	Raw  string
	JSON gjson.Result
	Err  error
}

// Classify sorts a reply into structured, unstructured or failed.
func Classify(raw string, err error) Response {
	if err != nil {
		return Response{Kind: Failure, Raw: raw, Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		return Response{Kind: Failure, Raw: raw}
	}
	doc, ok := ExtractJSON(raw)
	if !ok {
		return Response{Kind: Unstructured, Raw: raw}
	}
	res := gjson.Parse(doc)
	if !res.IsObject() {
		return Response{Kind: Unstructured, Raw: raw}
	}
	return Response{Kind: Structured, Raw: raw, JSON: res}
}

// Field returns the first of names present in a structured reply.
func (r Response) Field(names ...string) gjson.Result {
	for _, n := range names {
		if v := r.JSON.Get(n); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// String returns the first present field of names as text.
func (r Response) String(names ...string) (string, bool) {
	v := r.Field(names...)
	if !v.Exists() || v.Type == gjson.Null {
		return "", false
	}
	return v.String(), true
}

// Strings reads a list whose items are plain strings or objects carrying
// the text under one of keys.
func Strings(list gjson.Result, keys ...string) ([]string, bool) {
	if !list.IsArray() {
		return nil, false
	}
	var out []string
	ok := true
	list.ForEach(func(_, item gjson.Result) bool {
		switch {
		case item.Type == gjson.String:
			out = append(out, item.String())
		case item.IsObject():
			found := false
			for _, k := range keys {
				if v := item.Get(k); v.Exists() {
					out = append(out, v.String())
					found = true
					break
				}
			}
			if !found {
				ok = false
				return false
			}
		default:
			ok = false
			return false
		}
		return true
	})
	return out, ok
}

var (
	langTagRe   = regexp.MustCompile(`^(?i)json\s*`)
	fenceOpenRe = regexp.MustCompile("^`{3,}[\\w+-]*")
	fenceEndRe  = regexp.MustCompile("`{3,}$")
)

// Clean strips a surrounding code fence and a leading "json" language tag.
// Backticks inside the document are kept.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	if fenceOpenRe.MatchString(s) {
		s = fenceOpenRe.ReplaceAllString(s, "")
		s = strings.TrimSpace(fenceEndRe.ReplaceAllString(s, ""))
	}
	return strings.TrimSpace(langTagRe.ReplaceAllString(s, ""))
}

// ExtractJSON finds the JSON document in a reply. A reply that is JSON
// after cleaning is used whole; otherwise the first balanced {...} span is
// taken.
func ExtractJSON(raw string) (string, bool) {
	s := Clean(raw)
	if (strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")) && gjson.Valid(s) {
		return s, true
	}
	for start := strings.IndexByte(raw, '{'); start >= 0; {
		end := balancedEnd(raw, start)
		if end < 0 {
			return "", false
		}
		if doc := raw[start : end+1]; gjson.Valid(doc) {
			return doc, true
		}
		next := strings.IndexByte(raw[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// balancedEnd returns the index of the brace closing the one at start,
// skipping braces inside strings, or -1.
func balancedEnd(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
