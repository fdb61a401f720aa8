package mediahost

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHintsGarbageYieldsNothing(t *testing.T) {
	probe := NewProbe(testLogger())

	for _, name := range []string{"noise.mp3", "noise.flac", "noise.wav", "noise.ogg", "noise"} {
		hints := probe.Hints([]byte("definitely not audio data"), name)
		require.Empty(t, hints, "garbage input for %s must yield no hints", name)
	}
}

func TestHintsEmptyBuffer(t *testing.T) {
	probe := NewProbe(testLogger())
	require.Empty(t, probe.Hints(nil, "empty.mp3"))
}

// makeWAV builds a canonical PCM WAV buffer with the given seconds of
// silence at 8kHz mono 16-bit.
func makeWAV(seconds int) []byte {
	const (
		sampleRate = 8000
		channels   = 1
		bitDepth   = 16
	)
	dataSize := seconds * sampleRate * channels * bitDepth / 8

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*bitDepth/8))
	binary.Write(buf, binary.LittleEndian, uint16(channels*bitDepth/8))
	binary.Write(buf, binary.LittleEndian, uint16(bitDepth))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func TestHintsWAVDuration(t *testing.T) {
	probe := NewProbe(testLogger())

	hints := probe.Hints(makeWAV(3), "silence.wav")
	require.Equal(t, "3", hints["hint_duration"])
}

func TestDurationSelectsByExtension(t *testing.T) {
	probe := NewProbe(testLogger())

	// A valid WAV buffer named .mp3 should not produce a WAV duration
	require.Zero(t, probe.duration(makeWAV(3), "silence.mp3"))
	require.Zero(t, probe.duration(makeWAV(3), "silence"))
}
