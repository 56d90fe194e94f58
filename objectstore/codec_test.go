package objectstore

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
	Tag  string
}

func TestCodecs_RoundTrip(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, GobCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := codec.Marshal(point{X: 1, Y: -2, Tag: "origin"})
			require.NoError(t, err)

			var p point
			require.NoError(t, codec.Unmarshal(data, &p))
			if diff := cmp.Diff(point{X: 1, Y: -2, Tag: "origin"}, p); diff != "" {
				t.Errorf("point mismatch (-want +got):\n%s", diff)
			}

			data, err = codec.Marshal([]map[string]int{{"a": 1}, {"b": 2}})
			require.NoError(t, err)

			var list []map[string]int
			require.NoError(t, codec.Unmarshal(data, &list))
			assert.Equal(t, []map[string]int{{"a": 1}, {"b": 2}}, list)
		})
	}
}

func TestCodecs_RejectUnserializable(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, GobCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			_, err := codec.Marshal(make(chan int))
			assert.Error(t, err)

			_, err = codec.Marshal(func() {})
			assert.Error(t, err)
		})
	}
}

func TestGobCodec_CorruptData(t *testing.T) {
	var p point
	assert.Error(t, GobCodec{}.Unmarshal("not base64!", &p))
	assert.Error(t, GobCodec{}.Unmarshal("aGVsbG8=", &p))
}

func TestCodecByName(t *testing.T) {
	c, err := CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	c, err = CodecByName("gob")
	require.NoError(t, err)
	assert.Equal(t, "gob", c.Name())

	_, err = CodecByName("yaml")
	assert.Error(t, err)
}
