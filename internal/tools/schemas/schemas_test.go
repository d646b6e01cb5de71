package schemas

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildContactSchema() *Schema {
	return NewSchema("record_user_details", "Record that a user wants to be contacted").
		AddParam("email", "string", "The email address of this user", true).
		AddParamWithDefault("name", "string", "The user's name, if they provided it", "N/A", false).
		AddParamWithDefault("mobile_no", "string", "The mobile number of this user", "N/A", false).
		AddParamWithDefault("notes", "string", "Additional context worth recording", "N/A", false).
		Build()
}

func TestBuilder_RequiredAndDefaults(t *testing.T) {
	s := buildContactSchema()
	assert.Equal(t, []string{"email"}, s.Required())

	props := s.Parameters["properties"].(map[string]any)
	require.Len(t, props, 4)
	name := props["name"].(map[string]any)
	assert.Equal(t, "N/A", name["default"])
	assert.Equal(t, false, s.Parameters["additionalProperties"])
}

func TestRegistry_ListSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(NewSchema("zeta", "z").Build())
	r.Register(NewSchema("alpha", "a").Build())
	assert.Equal(t, []string{"alpha", "zeta"}, r.List())

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Name)
}

func TestToOpenAIFormat(t *testing.T) {
	r := NewRegistry()
	r.Register(buildContactSchema())

	out := r.ToOpenAIFormat()
	require.Len(t, out, 1)
	assert.Equal(t, "function", out[0]["type"])
	fn := out[0]["function"].(*Schema)
	assert.Equal(t, "record_user_details", fn.Name)
}

// compile proves the declared parameters form valid JSON Schema and
// enforce the additionalProperties contract at the backend level.
func compile(t *testing.T, s *Schema) *jsonschema.Schema {
	t.Helper()
	raw, err := json.Marshal(s.Parameters)
	require.NoError(t, err)

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	require.NoError(t, err)

	c := jsonschema.NewCompiler()
	require.NoError(t, c.AddResource("tool.json", doc))
	compiled, err := c.Compile("tool.json")
	require.NoError(t, err)
	return compiled
}

func TestSchema_ValidJSONSchema(t *testing.T) {
	compiled := compile(t, buildContactSchema())

	good, err := jsonschema.UnmarshalJSON(strings.NewReader(`{"email":"a@b.com"}`))
	require.NoError(t, err)
	assert.NoError(t, compiled.Validate(good))

	missing, err := jsonschema.UnmarshalJSON(strings.NewReader(`{"name":"Ada"}`))
	require.NoError(t, err)
	assert.Error(t, compiled.Validate(missing), "missing required email must fail")

	extra, err := jsonschema.UnmarshalJSON(strings.NewReader(`{"email":"a@b.com","age":30}`))
	require.NoError(t, err)
	assert.Error(t, compiled.Validate(extra), "undeclared parameters must be rejected")
}
