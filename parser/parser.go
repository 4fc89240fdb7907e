// Package parser reads authored documents and normalizes them into a
// ParsedContent record for the rest of the pipeline. Parsers register
// themselves by file extension at startup.
package parser

import (
	"path/filepath"
	"sort"
	"strings"
)

// Heading is one table-of-contents entry.
type Heading struct {
	Level int
	Text  string
}

// ParsedContent is the common record every parser produces. Content is an
// HTML fragment without an <html>/<body> wrapper. It is immutable once
// returned.
type ParsedContent struct {
	Title    string
	Content  string
	Images   []string
	Metadata map[string]string
	TOC      []Heading
}

// Parser turns one source file into a ParsedContent record.
type Parser interface {
	Parse(path string) (*ParsedContent, error)
	Supports(path string) bool
}

var registry = map[string]Parser{}

// Register binds a parser to a file extension (including the dot).
func Register(ext string, p Parser) {
	registry[strings.ToLower(ext)] = p
}

// Lookup returns the parser for the file's extension, or an
// UnsupportedTypeError.
func Lookup(path string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := registry[ext]
	if !ok {
		return nil, &UnsupportedTypeError{Path: path, Ext: ext}
	}
	return p, nil
}

// Supported reports whether a parser is registered for the file's extension.
func Supported(path string) bool {
	_, ok := registry[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions lists the registered extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
