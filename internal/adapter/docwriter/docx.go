// Package docwriter assembles generated CV text into a DOCX document.
//
// It renders the model's plain-text CV line by line: ALL-CAPS lines and lines
// ending with a colon become dark-blue section headings, everything else a
// normal paragraph. Assembly works by injecting WordprocessingML into an
// embedded minimal template, the replacement pattern the docx library is
// built around.
package docwriter

import (
	"bytes"
	_ "embed"
	"encoding/xml"
	"fmt"
	"strings"
	"unicode"

	"github.com/nguyenthenguyen/docx"
)

//go:embed template.docx
var templateDocx []byte

// contentPlaceholder is the single paragraph in the embedded template that
// gets replaced with the generated document body.
const contentPlaceholder = "<w:p><w:r><w:t>CAREERCOACH_CONTENT</w:t></w:r></w:p>"

// headingColor is the dark-blue heading accent.
const headingColor = "00008B"

// Writer implements domain.DocWriter.
type Writer struct{}

// New constructs a Writer.
func New() *Writer { return &Writer{} }

// WriteCV renders CV text into a DOCX byte stream.
func (w *Writer) WriteCV(text string) ([]byte, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(templateDocx), int64(len(templateDocx)))
	if err != nil {
		return nil, fmt.Errorf("docwriter template: %w", err)
	}
	edit := doc.Editable()
	edit.ReplaceRaw(contentPlaceholder, renderBody(text), 1)

	var buf bytes.Buffer
	if err := edit.Write(&buf); err != nil {
		return nil, fmt.Errorf("docwriter write: %w", err)
	}
	return buf.Bytes(), nil
}

// renderBody converts CV text into a sequence of WordprocessingML paragraphs.
func renderBody(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isSectionHeader(line) {
			writeHeading(&b, strings.TrimSuffix(line, ":"))
		} else {
			writeParagraph(&b, line)
		}
	}
	return b.String()
}

// isSectionHeader reports whether a line looks like a section header: all
// letters uppercase, or a trailing colon.
func isSectionHeader(line string) bool {
	if strings.HasSuffix(line, ":") {
		return true
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func writeHeading(b *strings.Builder, text string) {
	b.WriteString(`<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:rPr><w:b/><w:color w:val="`)
	b.WriteString(headingColor)
	b.WriteString(`"/></w:rPr><w:t xml:space="preserve">`)
	b.WriteString(escapeXML(text))
	b.WriteString(`</w:t></w:r></w:p>`)
}

func writeParagraph(b *strings.Builder, text string) {
	b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
	b.WriteString(escapeXML(text))
	b.WriteString(`</w:t></w:r></w:p>`)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
