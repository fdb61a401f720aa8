package mediahost

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/sirupsen/logrus"
	"github.com/tcolgate/mp3"
)

// Probe inspects uploaded media buffers for embedded metadata. Everything
// here is best-effort: a buffer the probe cannot read yields no hints, never
// an error, because hints must not block the upload itself.
type Probe struct {
	logger *logrus.Logger
}

// NewProbe creates a media probe.
func NewProbe(logger *logrus.Logger) *Probe {
	return &Probe{logger: logger}
}

// Hints returns the processing hints for a media upload: embedded tag
// title/artist when present and the duration in whole seconds when it can
// be derived from the container.
func (p *Probe) Hints(data []byte, filename string) map[string]string {
	hints := make(map[string]string)

	if meta, err := tag.ReadFrom(bytes.NewReader(data)); err == nil {
		if title := meta.Title(); title != "" {
			hints["hint_title"] = title
		}
		if artist := meta.Artist(); artist != "" {
			hints["hint_artist"] = artist
		}
	}

	if secs := p.duration(data, filename); secs > 0 {
		hints["hint_duration"] = strconv.Itoa(secs)
	}

	if len(hints) > 0 {
		p.logger.WithFields(logrus.Fields{
			"filename": filename,
			"hints":    hints,
		}).Debug("Derived media hints")
	}
	return hints
}

// duration derives the play time in seconds from the container format,
// selected by file extension.
func (p *Probe) duration(data []byte, filename string) int {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3":
		return durationMP3(data)
	case ".flac":
		return durationFLAC(data)
	case ".wav":
		return durationWAV(data)
	default:
		return 0
	}
}

// MP3 duration by decoding frames; a buffer with no decodable frames
// yields zero.
func durationMP3(data []byte) int {
	dec := mp3.NewDecoder(bytes.NewReader(data))
	var total time.Duration
	var skipped int
	for {
		var fr mp3.Frame
		if err := dec.Decode(&fr, &skipped); err != nil {
			if !errors.Is(err, io.EOF) && total == 0 {
				return 0
			}
			break
		}
		total += fr.Duration()
	}
	return int(total.Seconds())
}

// FLAC duration via the STREAMINFO metadata block.
func durationFLAC(data []byte) int {
	stream, err := flac.Parse(bytes.NewReader(data))
	if err != nil {
		return 0
	}
	si := stream.Info
	if si.NSamples > 0 && si.SampleRate > 0 {
		return int(float64(si.NSamples)/float64(si.SampleRate) + 0.5)
	}
	return 0
}

// WAV duration approximated from the header and PCM byte count.
func durationWAV(data []byte) int {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return 0
	}
	if dec.SampleRate == 0 || dec.BitDepth == 0 || dec.NumChans == 0 {
		return 0
	}

	headerSize := int64(44)
	pcmBytes := int64(len(data)) - headerSize
	if pcmBytes < 0 {
		pcmBytes = 0
	}
	bytesPerSampleFrame := int64(dec.BitDepth/8) * int64(dec.NumChans)
	if bytesPerSampleFrame <= 0 {
		return 0
	}
	sampleFrames := pcmBytes / bytesPerSampleFrame
	return int(float64(sampleFrames)/float64(dec.SampleRate) + 0.5)
}
