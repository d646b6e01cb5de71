package tools

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emissary-ai/emissary/internal/model"
)

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Push(_ context.Context, message string) {
	n.messages = append(n.messages, message)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	reg := NewRegistry()
	reg.Initialize(notifier, nil, quietLogger())
	return NewDispatcher(reg, quietLogger()), notifier
}

func decodePayload(t *testing.T, msg model.Message) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(msg.Content), &out))
	return out
}

func TestDispatch_Success(t *testing.T) {
	d, notifier := newTestDispatcher(t)

	results := d.Dispatch(context.Background(), []model.ToolCall{{
		ID:        "call_1",
		Name:      "record_unknown_question",
		Arguments: `{"question":"What's your favorite movie?"}`,
	}})
	require.Len(t, results, 1)
	assert.Equal(t, model.RoleTool, results[0].Role)
	assert.Equal(t, "call_1", results[0].ToolCallID)
	assert.JSONEq(t, `{"recorded":"ok"}`, results[0].Content)
	assert.Len(t, notifier.messages, 1)
}

func TestDispatch_UnknownTool(t *testing.T) {
	d, notifier := newTestDispatcher(t)

	results := d.Dispatch(context.Background(), []model.ToolCall{{
		ID:        "call_1",
		Name:      "send_invoice",
		Arguments: `{}`,
	}})
	require.Len(t, results, 1)
	payload := decodePayload(t, results[0])
	assert.Equal(t, ErrTagUnknownTool, payload["error"])
	assert.Equal(t, "send_invoice", payload["tool"])
	assert.Empty(t, notifier.messages, "no handler may run for an unknown tool")
}

func TestDispatch_MissingParameters(t *testing.T) {
	d, notifier := newTestDispatcher(t)

	results := d.Dispatch(context.Background(), []model.ToolCall{{
		ID:        "call_1",
		Name:      "record_user_details",
		Arguments: `{"name":"Ada"}`,
	}})
	require.Len(t, results, 1)
	payload := decodePayload(t, results[0])
	assert.Equal(t, ErrTagMissingParameters, payload["error"])
	assert.Equal(t, []any{"email"}, payload["missing"])
	assert.Empty(t, notifier.messages, "handler must not run with missing required parameters")
}

func TestDispatch_InvalidArguments(t *testing.T) {
	d, _ := newTestDispatcher(t)

	results := d.Dispatch(context.Background(), []model.ToolCall{{
		ID:        "call_1",
		Name:      "record_user_details",
		Arguments: `{not json`,
	}})
	require.Len(t, results, 1)
	payload := decodePayload(t, results[0])
	assert.Equal(t, ErrTagInvalidArguments, payload["error"])
}

func TestDispatch_ExtraArgumentsPassThrough(t *testing.T) {
	d, notifier := newTestDispatcher(t)

	results := d.Dispatch(context.Background(), []model.ToolCall{{
		ID:        "call_1",
		Name:      "record_user_details",
		Arguments: `{"email":"a@b.com","favorite_color":"teal"}`,
	}})
	require.Len(t, results, 1)
	assert.JSONEq(t, `{"recorded":"ok"}`, results[0].Content)
	assert.Len(t, notifier.messages, 1)
}

func TestDispatch_BatchOrderPreserved(t *testing.T) {
	d, _ := newTestDispatcher(t)

	calls := []model.ToolCall{
		{ID: "call_a", Name: "record_unknown_question", Arguments: `{"question":"q1"}`},
		{ID: "call_b", Name: "bogus", Arguments: `{}`},
		{ID: "call_c", Name: "record_user_details", Arguments: `{"email":"a@b.com"}`},
	}
	results := d.Dispatch(context.Background(), calls)
	require.Len(t, results, 3)
	assert.Equal(t, "call_a", results[0].ToolCallID)
	assert.Equal(t, "call_b", results[1].ToolCallID)
	assert.Equal(t, "call_c", results[2].ToolCallID)
}

func TestRegistry_ModelTools(t *testing.T) {
	reg := NewRegistry()
	reg.Initialize(&recordingNotifier{}, nil, quietLogger())

	defs := reg.ModelTools()
	require.Len(t, defs, 2)
	// Sorted by name for deterministic schema export.
	assert.Equal(t, "record_unknown_question", defs[0].Name)
	assert.Equal(t, "record_user_details", defs[1].Name)
	assert.Equal(t, false, defs[1].Parameters["additionalProperties"])
}

func TestRegistry_Required(t *testing.T) {
	reg := NewRegistry()
	reg.Initialize(&recordingNotifier{}, nil, quietLogger())

	required, ok := reg.Required("record_user_details")
	require.True(t, ok)
	assert.Equal(t, []string{"email"}, required)

	_, ok = reg.Required("bogus")
	assert.False(t, ok)
}
