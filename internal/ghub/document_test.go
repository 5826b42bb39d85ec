package ghub

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument_PreservesKeyOrder(t *testing.T) {
	data := `{
		"zeta": 1,
		"battery/g502/warning": {"percentage": 5},
		"alpha": {"nested": {"x": [1, 2, 3]}},
		"battery/g502/percentage": {"percentage": 80}
	}`

	doc, err := ParseDocument([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"zeta",
		"battery/g502/warning",
		"alpha",
		"battery/g502/percentage",
	}, doc.Keys())
	assert.JSONEq(t, `{"nested": {"x": [1, 2, 3]}}`, string(doc[2].Value))
}

func TestParseDocument_EmptyObject(t *testing.T) {
	doc, err := ParseDocument([]byte(" {} \n"))
	require.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Empty(t, doc)
}

func TestParseDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty input", ""},
		{"not json", "not json"},
		{"array", `[{"a": 1}]`},
		{"string", `"battery"`},
		{"truncated", `{"a": {"b": 1}`},
		{"trailing data", `{"a": 1} {"b": 2}`},
		{"bad value", `{"a": tru}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := ParseDocument([]byte(tc.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse), "expected ErrParse, got %v", err)
			assert.Nil(t, doc)
		})
	}
}

func TestDocument_Get(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"a": 1, "b": 2, "a": 3}`))
	require.NoError(t, err)

	v, ok := doc.Get("a")
	require.True(t, ok)
	assert.Equal(t, "3", string(v))

	v, ok = doc.Get("b")
	require.True(t, ok)
	assert.Equal(t, "2", string(v))

	_, ok = doc.Get("missing")
	assert.False(t, ok)
}
