package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source is the raw text of an event-model document and where it came from.
type Source struct {
	Name string
	Path string
	Data []byte
}

func Read(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	return &Source{
		Name: nameFromFile(filepath.Base(path)),
		Path: path,
		Data: data,
	}, nil
}

// LoadAll indexes every *.json document in dirs by name. Earlier dirs take
// precedence, so a project document shadows a user document of the same name.
func LoadAll(dirs []string) (map[string]*Source, error) {
	docs := make(map[string]*Source)

	for _, dir := range dirs {
		if err := loadFromDir(dir, docs); err != nil {
			// Skip directories that don't exist
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
	}

	return docs, nil
}

func loadFromDir(dir string, docs map[string]*Source) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := nameFromFile(entry.Name())
		if _, ok := docs[name]; ok {
			continue
		}

		src, err := Read(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		docs[name] = src
	}

	return nil
}

// Resolve accepts either a path to a file or the name of a document found
// in dirs.
func Resolve(arg string, dirs []string) (*Source, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return Read(arg)
	}

	docs, err := LoadAll(dirs)
	if err != nil {
		return nil, err
	}
	if src, ok := docs[nameFromFile(arg)]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("document %q not found", arg)
}

// Names returns the document names sorted alphabetically.
func Names(docs map[string]*Source) []string {
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func nameFromFile(file string) string {
	return strings.TrimSuffix(file, ".json")
}
