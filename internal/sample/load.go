package sample

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// Load decodes a sample file by extension. The result is mono, truncated to
// MaxFrames, with the file's native sample rate preserved.
func Load(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf *Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		buf, err = decodeWAV(f)
	case ".aif", ".aiff":
		buf, err = decodeAIFF(f)
	case ".mp3":
		buf, err = decodeMP3(f)
	case ".ogg", ".oga":
		buf, err = decodeOgg(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(buf.Data) == 0 {
		return nil, ErrEmptySample
	}
	if len(buf.Data) > MaxFrames {
		buf.Data = buf.Data[:MaxFrames]
	}
	return buf, nil
}

func decodeWAV(r io.ReadSeeker) (*Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidFile
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	return fromIntPCM(pcm.Data, pcm.Format.NumChannels, pcm.Format.SampleRate, int(dec.BitDepth))
}

func decodeAIFF(r io.ReadSeeker) (*Buffer, error) {
	dec := aiff.NewDecoder(r)
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	return fromIntPCM(pcm.Data, pcm.Format.NumChannels, pcm.Format.SampleRate, int(dec.BitDepth))
}

func fromIntPCM(data []int, channels, rate, bitDepth int) (*Buffer, error) {
	if channels <= 0 || rate <= 0 {
		return nil, ErrInvalidFile
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int64(1)<<uint(bitDepth-1))
	interleaved := make([]float64, len(data))
	for i, v := range data {
		interleaved[i] = float64(v) * scale
	}
	return &Buffer{Data: mixdown(interleaved, channels), Rate: float64(rate)}, nil
}

func decodeMP3(r io.Reader) (*Buffer, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	// go-mp3 always yields 16-bit little-endian stereo.
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}
	frames := len(raw) / 4
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(raw[4*i:]))
		rr := int16(binary.LittleEndian.Uint16(raw[4*i+2:]))
		mono[i] = (float64(l) + float64(rr)) / 2 / 32768
	}
	return &Buffer{Data: mono, Rate: float64(dec.SampleRate())}, nil
}

func decodeOgg(r io.Reader) (*Buffer, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	interleaved := make([]float64, len(data))
	for i, v := range data {
		interleaved[i] = float64(v)
	}
	return &Buffer{
		Data: mixdown(interleaved, format.Channels),
		Rate: float64(format.SampleRate),
	}, nil
}
