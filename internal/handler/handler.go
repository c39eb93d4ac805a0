// Package handler implements the command families: each handler pulls its
// argument out of the utterance, performs one side effect through a small
// capability interface and turns the outcome into a spoken response.
// Capability errors stop here; they never reach the session loop.
package handler

import (
	"context"
	"regexp"
	"strings"

	"vox/internal/osctl"
)

type Browser interface {
	OpenURL(ctx context.Context, url string) error
}

type Launcher interface {
	Launch(ctx context.Context, app string) (osctl.Launched, error)
}

type FileStore interface {
	CreateFile(ctx context.Context, name, content string) (string, error)
	RenameFile(ctx context.Context, oldName, newName string) (string, error)
}

type Mixer interface {
	AdjustVolume(ctx context.Context, dir osctl.Direction, level int) error
}

type Backlight interface {
	AdjustBrightness(ctx context.Context, dir osctl.Direction, level int) error
}

type Power interface {
	RequestPower(ctx context.Context, action osctl.PowerAction) error
}

// keywordSet holds whole-word patterns compiled once per family.
type keywordSet []*regexp.Regexp

func newKeywordSet(keywords []string) keywordSet {
	set := make(keywordSet, len(keywords))
	for i, kw := range keywords {
		set[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return set
}

// after returns the part of text following the earliest occurrence of any
// keyword.
func (k keywordSet) after(text string) (string, bool) {
	best, end := -1, 0

	for _, re := range k {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if best == -1 || loc[0] < best {
			best, end = loc[0], loc[1]
		}
	}

	if best == -1 {
		return "", false
	}
	return strings.TrimSpace(text[end:]), true
}

// trimFillers drops leading filler phrases until none applies.
func trimFillers(s string, fillers []string) string {
	for {
		s = strings.TrimSpace(s)
		trimmed := false
		for _, f := range fillers {
			if s == f {
				return ""
			}
			if strings.HasPrefix(s, f+" ") {
				s = s[len(f)+1:]
				trimmed = true
			}
		}
		if !trimmed {
			return s
		}
	}
}

func trimPunct(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".,!?;:\"'")
}
