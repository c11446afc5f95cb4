package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoolToTri(t *testing.T) {
	assert.Equal(t, Yes, BoolToTri(true))
	assert.Equal(t, No, BoolToTri(false))
}

func TestTriStateScore(t *testing.T) {
	assert.Equal(t, 1.0, Yes.Score())
	assert.Equal(t, -1.0, No.Score())
	assert.Equal(t, 0.0, Unknown.Score())
}

func TestTriStatePredicates(t *testing.T) {
	assert.True(t, Yes.IsYes())
	assert.True(t, No.IsNo())
	assert.True(t, Unknown.IsUnknown())
	assert.False(t, Yes.IsNo())
	assert.False(t, No.IsYes())
}

func TestTriStateJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   TriState
		want string
	}{
		{"yes", Yes, "true"},
		{"no", No, "false"},
		{"unknown", Unknown, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var out TriState
			require.NoError(t, json.Unmarshal(data, &out))
			assert.Equal(t, tt.in, out)
		})
	}
}

func TestTriStateUnmarshalInStruct(t *testing.T) {
	type wrapper struct {
		Indoor TriState `json:"indoor"`
	}
	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"indoor":null}`), &w))
	assert.Equal(t, Unknown, w.Indoor)

	require.NoError(t, json.Unmarshal([]byte(`{"indoor":true}`), &w))
	assert.Equal(t, Yes, w.Indoor)

	require.NoError(t, json.Unmarshal([]byte(`{"indoor":false}`), &w))
	assert.Equal(t, No, w.Indoor)
}
