package handler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"vox/internal/auth"
	"vox/internal/nlu"
	"vox/internal/osctl"
)

var (
	createRe  = regexp.MustCompile(`\b(?:create|make|new)\s+(?:a\s+)?(?:new\s+)?file\b(.*)$`)
	contentRe = regexp.MustCompile(`(?:^|\s)(?:with (?:the )?content|containing|that says|saying)(?:\s+|$)`)
	renameRe  = regexp.MustCompile(`\brename\s+(?:the\s+)?(?:file\s+)?(\S+)\s+to\s+(\S+)`)
)

const renameUsage = "Please specify which file you want to rename and the new name. For example, say 'rename file.txt to newfile.txt'."

type File struct {
	store FileStore
}

func NewFile(store FileStore) *File {
	return &File{store: store}
}

func (f *File) Handle(ctx context.Context, cmd nlu.Command, _ auth.Privilege) nlu.Result {
	if nlu.ContainsPhrase(cmd.Text, "rename") {
		return f.rename(ctx, cmd.Text)
	}
	return f.create(ctx, cmd.Text)
}

// CreateArgs extracts the file name and optional content of a create
// command. The name gets a .txt extension when it has none.
func CreateArgs(text string) (name, content string) {
	m := createRe.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}

	rest := strings.TrimSpace(m[1])
	if loc := contentRe.FindStringIndex(rest); loc != nil {
		content = strings.TrimSpace(rest[loc[1]:])
		rest = rest[:loc[0]]
	}

	rest = trimFillers(rest, []string{"called", "named", "titled"})
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", content
	}

	name = strings.TrimRight(fields[0], ",!?;:")
	name = strings.TrimSuffix(name, ".")
	name = filepath.Base(name)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", content
	}

	if filepath.Ext(name) == "" {
		name += ".txt"
	}

	return name, content
}

func (f *File) create(ctx context.Context, text string) nlu.Result {
	name, content := CreateArgs(text)
	if name == "" {
		return nlu.Missing(nlu.FileCreate, "What would you like to name the file?")
	}

	if _, err := f.store.CreateFile(ctx, name, content); err != nil {
		return nlu.Failed(nlu.FileCreate,
			fmt.Sprintf("I couldn't create the file %s. Make sure you have permission to write to this location.", name),
			err)
	}

	if content == "" {
		return nlu.Done(nlu.FileCreate, fmt.Sprintf("I've created the file %s.", name))
	}
	return nlu.Done(nlu.FileCreate, fmt.Sprintf("I've created the file %s with your content.", name))
}

func (f *File) rename(ctx context.Context, text string) nlu.Result {
	m := renameRe.FindStringSubmatch(text)
	if m == nil {
		return nlu.Missing(nlu.FileCreate, renameUsage)
	}

	oldName, newName := trimPunct(m[1]), trimPunct(m[2])
	if oldName == "" || newName == "" {
		return nlu.Missing(nlu.FileCreate, renameUsage)
	}

	_, err := f.store.RenameFile(ctx, oldName, newName)
	switch {
	case err == nil:
		return nlu.Done(nlu.FileCreate, fmt.Sprintf("File %s has been renamed to %s.", oldName, newName))
	case errors.Is(err, osctl.ErrNotFound):
		return nlu.Failed(nlu.FileCreate, fmt.Sprintf("I couldn't find the file %s.", oldName), err)
	case errors.Is(err, osctl.ErrExists):
		return nlu.Failed(nlu.FileCreate,
			fmt.Sprintf("A file named %s already exists. Please choose a different name.", newName), err)
	default:
		return nlu.Failed(nlu.FileCreate, "I couldn't rename the file. Make sure you have permission to modify this file.", err)
	}
}
