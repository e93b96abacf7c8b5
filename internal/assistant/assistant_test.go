package assistant

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/prism/internal/clierr"
)

func TestPayload(t *testing.T) {
	assert.Equal(t, "plain text", Payload("plain text"))
	assert.JSONEq(t, `{"title":"T","step_to_add":"x"}`, Payload(map[string]string{"title": "T", "step_to_add": "x"}))
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"pure", `{"step":"a"}`, `{"step":"a"}`, true},
		{"fenced", "```json\n{\"step\":\"a\"}\n```", `{"step":"a"}`, true},
		{"bare tag", "json {\"step\":\"a\"}", `{"step":"a"}`, true},
		{"prose around", "Sure! Here it is:\n{\"Title\":\"T\"}\nHope that helps.", `{"Title":"T"}`, true},
		{"brace in string", `Result: {"Step":"use } carefully"} done`, `{"Step":"use } carefully"}`, true},
		{"escaped quote", `x {"Step":"say \"}\" twice"} y`, `{"Step":"say \"}\" twice"}`, true},
		{"first invalid then valid", `{not json} then {"a":1}`, `{"a":1}`, true},
		{"inline code", "{\"Step\": \"Run `go test ./...` and fix failures\"}", "{\"Step\": \"Run `go test ./...` and fix failures\"}", true},
		{"fenced inline code", "```json\n{\"Step\": \"Run `make lint`\"}\n```", "{\"Step\": \"Run `make lint`\"}", true},
		{"no json", "I cannot help with that.", "", false},
		{"unbalanced", `{"a": 1`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.JSONEq(t, tt.want, got)
			}
		})
	}
}

func TestCleanKeepsInnerBackticks(t *testing.T) {
	assert.Equal(t, "{\"Step\":\"`x`\"}", Clean("```\n{\"Step\":\"`x`\"}\n```"))
	assert.Equal(t, "{\"Step\":\"`x`\"}", Clean("  ```JSON {\"Step\":\"`x`\"}```  "))
	assert.Equal(t, "{\"Step\":\"```\"}", Clean("{\"Step\":\"```\"}"))
}

func TestClassify(t *testing.T) {
	r := Classify(`{"Title":"T","Estimated Total Time":"1h","Steps":["a",{"Description":"b"}]}`, nil)
	require.Equal(t, Structured, r.Kind)

	est, ok := r.String("EstimatedTotalTime", "Estimated Total Time")
	assert.True(t, ok)
	assert.Equal(t, "1h", est)

	steps, ok := Strings(r.Field("Steps"), "Description", "description")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, steps)

	assert.Equal(t, Unstructured, Classify("no json here", nil).Kind)
	assert.Equal(t, Unstructured, Classify(`["a","b"]`, nil).Kind)
	assert.Equal(t, Failure, Classify("  ", nil).Kind)

	boom := errors.New("boom")
	f := Classify("", boom)
	assert.Equal(t, Failure, f.Kind)
	assert.ErrorIs(t, f.Err, boom)
	assert.Equal(t, "failure", f.Kind.String())
}

func TestStringsRejectsBadItems(t *testing.T) {
	r := Classify(`{"Steps":[{"Other":"x"}], "N": 3}`, nil)
	_, ok := Strings(r.Field("Steps"), "Description")
	assert.False(t, ok)

	_, ok = Strings(r.Field("N"))
	assert.False(t, ok)
}

func TestStubServesRepliesInOrder(t *testing.T) {
	s := NewStub("one", "two")
	ctx := context.Background()

	got, err := s.Complete(ctx, "r1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "one", got)

	got, err = s.Complete(ctx, "r2", "p2")
	require.NoError(t, err)
	assert.Equal(t, "two", got)

	got, err = s.Complete(ctx, "r3", "p3")
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Equal(t, []Call{{"r1", "p1"}, {"r2", "p2"}, {"r3", "p3"}}, s.Calls())
}

func TestOfflineCreate(t *testing.T) {
	reply, err := Offline().Complete(context.Background(), CreateRule, "Write report\nwith charts")
	require.NoError(t, err)

	r := Classify(reply, nil)
	require.Equal(t, Structured, r.Kind)
	title, _ := r.String("Title")
	assert.Equal(t, "Write report", title)
}

func TestOfflineCombine(t *testing.T) {
	payload := Payload(map[string]any{"title": "T", "description": "D", "steps_to_combine": []string{"a", "b"}})
	reply, err := Offline().Complete(context.Background(), CombineRule, payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Step":"a; b"}`, reply)
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("PRISM_TEST_KEY", "")

	dir := t.TempDir()
	file := filepath.Join(dir, "api_key.txt")
	require.NoError(t, os.WriteFile(file, []byte(base64.StdEncoding.EncodeToString([]byte("sk-test\n"))+"\n"), 0o600))

	key, err := ResolveAPIKey("PRISM_TEST_KEY", file)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)

	t.Setenv("PRISM_TEST_KEY", "sk-env")
	key, err = ResolveAPIKey("PRISM_TEST_KEY", file)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", key)

	t.Setenv("PRISM_TEST_KEY", "")
	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("%%%"), 0o600))
	_, err = ResolveAPIKey("PRISM_TEST_KEY", bad)
	assert.True(t, clierr.Is(err, clierr.AssistantUnavailable))

	_, err = ResolveAPIKey("PRISM_TEST_KEY", "")
	assert.True(t, clierr.Is(err, clierr.AssistantUnavailable))
}
