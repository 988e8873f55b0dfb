package docparse

import (
	"os"
	"path/filepath"
	"strings"
)

// supportedExtensions maps a lowercased file extension to its MIME type.
// Any other extension is unsupported and Parse returns (nil, nil) for it.
var supportedExtensions = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
}

// PlainTextParser reads Markdown and plain-text files verbatim. It is the
// retrieval core's one concrete DocumentParser; richer formats (PDF,
// Office, OCR) are external collaborators per spec.md §6.
type PlainTextParser struct{}

// NewPlainTextParser returns a PlainTextParser.
func NewPlainTextParser() *PlainTextParser {
	return &PlainTextParser{}
}

// Parse reads path and returns a ParsedDocument, or (nil, nil) if path's
// extension is not one PlainTextParser supports.
func (p *PlainTextParser) Parse(path string) (*ParsedDocument, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mimeType, ok := supportedExtensions[ext]
	if !ok {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &ParsedDocument{
		ID:           documentID(absPath),
		AbsolutePath: absPath,
		FileName:     filepath.Base(path),
		Text:         string(data),
		MimeType:     mimeType,
		Metadata:     map[string]string{"extension": ext},
	}, nil
}
