// Package probe provides media metadata probing via the ffprobe CLI.
// It exposes the subset of the probe report that downstream consumers
// need: container format fields, per-stream fields and format tags.
package probe

// Data is the typed view of one ffprobe report for a media file.
type Data struct {
	// Format holds container-level metadata.
	Format Format `json:"format"`
	// Streams holds per-stream metadata in probe order.
	Streams []Stream `json:"streams"`
}

// Format is the container-level section of a probe report.
type Format struct {
	Filename string `json:"filename"`
	// Duration is the container duration in seconds, as reported
	// (a decimal string, possibly absent or "N/A").
	Duration string `json:"duration"`
	// Tags holds free-form container tags (e.g. a Matroska DURATION tag).
	Tags map[string]string `json:"tags"`
}

// Stream is one stream entry of a probe report.
type Stream struct {
	Index     int    `json:"index"`
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	// CodedWidth and CodedHeight are the encoded dimensions; some
	// containers report only these.
	CodedWidth  int    `json:"coded_width"`
	CodedHeight int    `json:"coded_height"`
	// Duration is the stream duration in seconds as a decimal string.
	Duration string `json:"duration"`
}

// VideoStream returns the first stream whose codec type is "video".
func (d *Data) VideoStream() (Stream, bool) {
	for _, s := range d.Streams {
		if s.CodecType == "video" {
			return s, true
		}
	}
	return Stream{}, false
}

// VideoDimensions returns the frame dimensions of the first video
// stream, falling back to the coded dimensions when the display ones
// are absent. Returns 0, 0 when the file has no video stream.
func (d *Data) VideoDimensions() (width, height int) {
	s, ok := d.VideoStream()
	if !ok {
		return 0, 0
	}
	width, height = s.Width, s.Height
	if width == 0 {
		width = s.CodedWidth
	}
	if height == 0 {
		height = s.CodedHeight
	}
	return width, height
}
