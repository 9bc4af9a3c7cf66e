package probe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `{
	"streams": [
		{
			"index": 0,
			"codec_name": "h264",
			"codec_type": "video",
			"width": 1920,
			"height": 1080,
			"coded_width": 1920,
			"coded_height": 1088
		},
		{
			"index": 1,
			"codec_name": "aac",
			"codec_type": "audio",
			"duration": "123.000000"
		}
	],
	"format": {
		"filename": "movie.mkv",
		"duration": "123.456000",
		"tags": {
			"DURATION": "00:02:03.456000000",
			"encoder": "libebml"
		}
	}
}`

func TestDataUnmarshal(t *testing.T) {
	var data Data
	require.NoError(t, json.Unmarshal([]byte(sampleReport), &data))

	assert.Equal(t, "movie.mkv", data.Format.Filename)
	assert.Equal(t, "123.456000", data.Format.Duration)
	assert.Equal(t, "00:02:03.456000000", data.Format.Tags["DURATION"])
	require.Len(t, data.Streams, 2)
	assert.Equal(t, "h264", data.Streams[0].CodecName)
	assert.Equal(t, "audio", data.Streams[1].CodecType)
}

func TestVideoStream(t *testing.T) {
	t.Run("returns the first video stream", func(t *testing.T) {
		data := Data{Streams: []Stream{
			{Index: 0, CodecType: "audio"},
			{Index: 1, CodecType: "video", Width: 1280},
			{Index: 2, CodecType: "video", Width: 640},
		}}

		s, ok := data.VideoStream()
		require.True(t, ok)
		assert.Equal(t, 1, s.Index)
	})

	t.Run("not found when there is no video stream", func(t *testing.T) {
		data := Data{Streams: []Stream{{CodecType: "audio"}}}
		_, ok := data.VideoStream()
		assert.False(t, ok)
	})
}

func TestVideoDimensions(t *testing.T) {
	t.Run("display dimensions win", func(t *testing.T) {
		data := Data{Streams: []Stream{
			{CodecType: "video", Width: 1920, Height: 1080, CodedWidth: 1920, CodedHeight: 1088},
		}}

		w, h := data.VideoDimensions()
		assert.Equal(t, 1920, w)
		assert.Equal(t, 1080, h)
	})

	t.Run("coded dimensions as fallback", func(t *testing.T) {
		data := Data{Streams: []Stream{
			{CodecType: "video", CodedWidth: 720, CodedHeight: 576},
		}}

		w, h := data.VideoDimensions()
		assert.Equal(t, 720, w)
		assert.Equal(t, 576, h)
	})

	t.Run("zero when there is no video stream", func(t *testing.T) {
		var data Data
		w, h := data.VideoDimensions()
		assert.Zero(t, w)
		assert.Zero(t, h)
	})
}
