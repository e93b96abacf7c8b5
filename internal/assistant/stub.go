package assistant

import (
	"context"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// Call records one request made to a Stub.
type Call struct {
	Rule    string
	Payload string
}

// Stub is a scripted Completer. Replies are served in order; once they run
// out, Reply (when set) answers instead.
type Stub struct {
	Replies []string
	Err     error
	Reply   func(rule, payload string) (string, error)

	mu    sync.Mutex
	calls []Call
}

// NewStub returns a stub that answers with replies in order.
func NewStub(replies ...string) *Stub {
	return &Stub{Replies: replies}
}

// Complete implements Completer.
func (s *Stub) Complete(_ context.Context, rule, payload string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Rule: rule, Payload: payload})
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Replies) > 0 {
		reply := s.Replies[0]
		s.Replies = s.Replies[1:]
		return reply, nil
	}
	if s.Reply != nil {
		return s.Reply(rule, payload)
	}
	return "", nil
}

// Calls returns the requests made so far.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Offline returns a stub that answers every rule deterministically without
// a network, echoing the input back in the expected shape.
func Offline() *Stub {
	return &Stub{Reply: offlineReply}
}

func offlineReply(rule, payload string) (string, error) {
	in := gjson.Parse(payload)
	switch rule {
	case CreateRule:
		title := firstLine(payload)
		return Payload(map[string]any{
			"Title":                title,
			"Description":          strings.TrimSpace(payload),
			"Steps":                []string{title},
			"Estimated Total Time": "unknown",
		}), nil
	case ExpandRule:
		step := in.Get("step_to_expand").String()
		return Payload(map[string]any{
			"Steps": []map[string]string{{"Description": step}},
		}), nil
	case CombineRule:
		var parts []string
		in.Get("steps_to_combine").ForEach(func(_, v gjson.Result) bool {
			parts = append(parts, v.String())
			return true
		})
		return Payload(map[string]string{"Step": strings.Join(parts, "; ")}), nil
	case AddStepRule:
		return Payload(map[string]string{"step": in.Get("step_to_add").String()}), nil
	case ContextRule:
		return "{}", nil
	}
	return "", nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
