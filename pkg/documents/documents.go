// Package documents reads text files from disk and splits them into chunks
// small enough to embed and hand to a model as context.
package documents

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ErrNoDocuments is returned when a directory holds no readable files.
var ErrNoDocuments = errors.New("no documents found")

// Extensions lists the file types LoadDir reads.
var Extensions = []string{".txt", ".md", ".markdown"}

// namespace scopes the name-based UUIDs of documents and chunks.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/papercomputeco/seekchat"))

// Document is the full text of one file.
type Document struct {
	ID     string
	Source string
	Text   string
}

// Supported reports whether path has one of Extensions.
func Supported(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// LoadFile reads one file.
func LoadFile(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Document{
		ID:     uuid.NewSHA1(namespace, []byte(path)).String(),
		Source: path,
		Text:   string(b),
	}, nil
}

// LoadDir reads every supported file under dir, recursively, in lexical
// order. Hidden files and directories are skipped.
func LoadDir(dir string) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}

		doc, err := LoadFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, dir)
	}
	return docs, nil
}
