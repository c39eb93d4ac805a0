package handler

import (
	"context"
	"fmt"

	"vox/internal/osctl"
)

type fakeHost struct {
	err error

	urls     []string
	launched []string
	known    map[string]bool
	created  map[string]string
	renamed  [][2]string
	volume   []string
	bright   []string
	power    []osctl.PowerAction
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		known:   map[string]bool{"chrome": true, "calculator": true, "spotify": true},
		created: map[string]string{},
	}
}

func (f *fakeHost) OpenURL(_ context.Context, url string) error {
	f.urls = append(f.urls, url)
	return f.err
}

func (f *fakeHost) Launch(_ context.Context, app string) (osctl.Launched, error) {
	f.launched = append(f.launched, app)
	return osctl.Launched{Name: app, Known: f.known[app], OS: "Linux"}, f.err
}

func (f *fakeHost) CreateFile(_ context.Context, name, content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created[name] = content
	return "/tmp/" + name, nil
}

func (f *fakeHost) RenameFile(_ context.Context, oldName, newName string) (string, error) {
	f.renamed = append(f.renamed, [2]string{oldName, newName})
	return "/tmp/" + newName, f.err
}

func (f *fakeHost) AdjustVolume(_ context.Context, dir osctl.Direction, level int) error {
	f.volume = append(f.volume, fmt.Sprintf("%s %d", dir, level))
	return f.err
}

func (f *fakeHost) AdjustBrightness(_ context.Context, dir osctl.Direction, level int) error {
	f.bright = append(f.bright, fmt.Sprintf("%s %d", dir, level))
	return f.err
}

func (f *fakeHost) RequestPower(_ context.Context, action osctl.PowerAction) error {
	f.power = append(f.power, action)
	return f.err
}
