package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"vox/pkg/audioconv"
)

// FileRecorder replays recorded utterances in order, one file per Record
// call. It returns io.EOF once every file was played.
type FileRecorder struct {
	mu    sync.Mutex
	files []string
}

func NewFileRecorder(files ...string) *FileRecorder {
	return &FileRecorder{files: files}
}

// NewDirRecorder replays every file in dir in lexical order.
func NewDirRecorder(dir string) (*FileRecorder, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)

	return NewFileRecorder(files...), nil
}

func (f *FileRecorder) Record(ctx context.Context, l Limits) ([]float32, error) {
	f.mu.Lock()
	if len(f.files) == 0 {
		f.mu.Unlock()
		return nil, io.EOF
	}
	path := f.files[0]
	f.files = f.files[1:]
	f.mu.Unlock()

	l = l.withDefaults()
	pcm, err := audioconv.DecodeFile(ctx, path, audioconv.Options{
		MaxSamples: int(l.PhraseLimit.Seconds() * SampleRate),
	})
	if err != nil {
		return nil, fmt.Errorf("audio: replay %s: %w", filepath.Base(path), err)
	}
	return pcm, nil
}

// Remaining reports how many files are left.
func (f *FileRecorder) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}
