package datasizes_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osbuild/fdisk-script/pkg/datasizes"
)

func TestSizeUnmarshalJSON(t *testing.T) {
	var v struct {
		Size datasizes.Size `json:"size"`
	}

	cases := []struct {
		input    string
		expected uint64
	}{
		{`{"size": 123}`, 123},
		{`{"size": "1234"}`, 1234},
		{`{"size": "1 GiB"}`, datasizes.GiB},
		{`{"size": "10 MB"}`, 10 * datasizes.MegaByte},
	}

	for _, c := range cases {
		require.NoErrorf(t, json.Unmarshal([]byte(c.input), &v), "input %s", c.input)
		assert.Equalf(t, c.expected, v.Size.Uint64(), "input %s", c.input)
	}

	for _, input := range []string{`{"size": -10}`, `{"size": 1.5}`, `{"size": "10 flurbs"}`, `{"size": true}`} {
		err := json.Unmarshal([]byte(input), &v)
		assert.Errorf(t, err, "input %s should fail", input)
	}
}

func TestSizeUnmarshalTOML(t *testing.T) {
	var s datasizes.Size

	require.NoError(t, s.UnmarshalTOML("2 GiB"))
	assert.Equal(t, uint64(2*datasizes.GibiByte), s.Uint64())

	require.NoError(t, s.UnmarshalTOML(int64(4096)))
	assert.Equal(t, uint64(4096), s.Uint64())

	assert.Error(t, s.UnmarshalTOML(int64(-1)))
	assert.Error(t, s.UnmarshalTOML(3.14))
}
