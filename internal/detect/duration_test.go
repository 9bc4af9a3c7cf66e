package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blackbarhq/blackbar/internal/probe"
)

func TestResolveDuration(t *testing.T) {
	t.Run("container duration wins", func(t *testing.T) {
		data := &probe.Data{
			Format: probe.Format{Duration: "123.456"},
			Streams: []probe.Stream{
				{CodecType: "video", Duration: "999"},
			},
		}

		d := ResolveDuration(data)
		assert.True(t, d.Known)
		assert.InDelta(t, 123.456, d.Seconds, 0.001)
	})

	t.Run("falls back to video stream duration", func(t *testing.T) {
		data := &probe.Data{
			Streams: []probe.Stream{
				{CodecType: "audio", Duration: "50"},
				{CodecType: "video", Duration: "88.5"},
			},
		}

		d := ResolveDuration(data)
		assert.True(t, d.Known)
		assert.InDelta(t, 88.5, d.Seconds, 0.001)
	})

	t.Run("falls back to DURATION tag", func(t *testing.T) {
		data := &probe.Data{
			Format: probe.Format{
				Tags: map[string]string{"DURATION": "01:02:03.500"},
			},
		}

		d := ResolveDuration(data)
		assert.True(t, d.Known)
		assert.InDelta(t, 3723.5, d.Seconds, 0.001)
	})

	t.Run("language-suffixed duration tag", func(t *testing.T) {
		data := &probe.Data{
			Format: probe.Format{
				Tags: map[string]string{"DURATION-eng": "00:10:00"},
			},
		}

		d := ResolveDuration(data)
		assert.True(t, d.Known)
		assert.InDelta(t, 600, d.Seconds, 0.001)
	})

	t.Run("unparsable fields degrade to unknown", func(t *testing.T) {
		data := &probe.Data{
			Format: probe.Format{
				Duration: "N/A",
				Tags:     map[string]string{"DURATION": "soon"},
			},
			Streams: []probe.Stream{
				{CodecType: "video", Duration: ""},
			},
		}

		assert.False(t, ResolveDuration(data).Known)
	})

	t.Run("empty metadata is unknown", func(t *testing.T) {
		assert.False(t, ResolveDuration(&probe.Data{}).Known)
	})

	t.Run("nil metadata is unknown", func(t *testing.T) {
		assert.False(t, ResolveDuration(nil).Known)
	})

	t.Run("unparsable container duration still tries streams", func(t *testing.T) {
		data := &probe.Data{
			Format: probe.Format{Duration: "garbage"},
			Streams: []probe.Stream{
				{CodecType: "video", Duration: "42"},
			},
		}

		d := ResolveDuration(data)
		assert.True(t, d.Known)
		assert.InDelta(t, 42, d.Seconds, 0.001)
	})
}
