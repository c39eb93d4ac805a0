// Package audioconv decodes recorded audio files into 16 kHz mono float32
// PCM ready for speech recognition.
package audioconv

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const TargetRate = 16000

var ErrUnsupported = errors.New("audioconv: unsupported format")

type Options struct {
	MaxSamples int
}

// decoder turns r into mono PCM at TargetRate.
type decoder func(r io.ReadSeeker) ([]float32, error)

type format struct {
	name  string
	exts  []string
	magic string
	dec   []decoder // tried in order; an Ogg stream is Vorbis or Opus
}

var formats = []format{
	{name: "wav", exts: []string{".wav"}, magic: "RIFF", dec: []decoder{decodeWAV}},
	{name: "mp3", exts: []string{".mp3"}, magic: "ID3", dec: []decoder{decodeMP3}},
	{name: "ogg", exts: []string{".ogg", ".oga", ".opus"}, magic: "OggS", dec: []decoder{decodeVorbis, decodeOpus}},
}

func DecodeFile(ctx context.Context, path string, opt Options) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audioconv: %w", err)
	}
	defer f.Close()

	return Decode(f, filepath.Ext(path), opt)
}

// Decode picks a format by extension, falling back to the stream's magic
// bytes when the extension is unknown.
func Decode(r io.ReadSeeker, ext string, opt Options) ([]float32, error) {
	fm, ok := byExt(ext)
	if !ok {
		fm, ok = sniff(r)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: wav/mp3/ogg-vorbis/opus)", ErrUnsupported, ext)
	}

	var errs []error
	for _, dec := range fm.dec {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("audioconv: rewind: %w", err)
		}
		pcm, err := dec(r)
		if err == nil {
			return truncate(pcm, opt.MaxSamples), nil
		}
		errs = append(errs, err)
	}

	return nil, fmt.Errorf("audioconv: decode %s: %w", fm.name, errors.Join(errs...))
}

func byExt(ext string) (format, bool) {
	ext = strings.ToLower(ext)
	for _, fm := range formats {
		for _, e := range fm.exts {
			if e == ext {
				return fm, true
			}
		}
	}
	return format{}, false
}

func sniff(r io.ReadSeeker) (format, bool) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return format{}, false
	}
	magic, _ := bufio.NewReader(r).Peek(4)
	for _, fm := range formats {
		if strings.HasPrefix(string(magic), fm.magic) {
			return fm, true
		}
	}
	return format{}, false
}

func truncate(pcm []float32, n int) []float32 {
	if n > 0 && len(pcm) > n {
		return pcm[:n]
	}
	return pcm
}
