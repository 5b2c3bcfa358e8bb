package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `[1]`, CleanJSON("  [1] \n"))
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		open byte
		want string
	}{
		{"object with prose", `Sure! {"a": {"b": 2}} hope that helps`, '{', `{"a": {"b": 2}}`},
		{"array", "Here:\n[{\"index\":0}] done", '[', `[{"index":0}]`},
		{"brace inside string", `{"reason":"uses } and {"}`, '{', `{"reason":"uses } and {"}`},
		{"escaped quote", `{"r":"say \"hi}\""}`, '{', `{"r":"say \"hi}\""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in, tt.open)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ExtractJSON("no json here", '{')
	assert.True(t, errors.Is(err, ErrNoJSON))
	_, err = ExtractJSON(`{"unterminated": 1`, '{')
	assert.True(t, errors.Is(err, ErrNoJSON))
}

func TestDecodeJSON(t *testing.T) {
	type item struct {
		Index int `json:"index"`
	}
	got, err := DecodeJSON[[]item]("```\n[{\"index\":3}]\n```", '[')
	require.NoError(t, err)
	assert.Equal(t, []item{{Index: 3}}, got)

	_, err = DecodeJSON[map[string]any]("[1,2]", '{')
	assert.Error(t, err)
}
