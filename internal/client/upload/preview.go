package upload

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const excerptWords = 40

var xmlTag = regexp.MustCompile(`<[^>]+>`)

var pageText = func(p pdf.Page) (string, error) {
	return p.GetPlainText(nil)
}

// Preview is a local look at a candidate's text before it is sent.
type Preview struct {
	WordCount int
	Excerpt   string
	// PageErr is set when some PDF pages could not be read and were skipped.
	PageErr error
}

// NewPreview extracts text from a PDF, DOCX or plain text candidate. It is
// informational only; a failure here never blocks submission.
func NewPreview(c Candidate) (Preview, error) {
	text, pageErr, err := extractText(c)
	if err != nil {
		return Preview{}, err
	}

	words := strings.Fields(text)
	excerpt := words
	if len(excerpt) > excerptWords {
		excerpt = excerpt[:excerptWords]
	}
	out := strings.Join(excerpt, " ")
	if len(words) > excerptWords {
		out += " ..."
	}
	return Preview{WordCount: len(words), Excerpt: out, PageErr: pageErr}, nil
}

func extractText(c Candidate) (text string, pageErr error, err error) {
	kind := baseMediaType(c.MIMEType)
	switch ext := strings.ToLower(filepath.Ext(c.Name)); {
	case kind == MIMEPDF || ext == ".pdf":
		return extractPDFText(c.Path)
	case kind == MIMEDOCX || ext == ".docx":
		text, err = extractDocxText(c.Path)
		return text, nil, err
	case kind == MIMETXT || ext == ".txt":
		b, err := os.ReadFile(c.Path)
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", c.Name, err)
		}
		return string(b), nil, nil
	default:
		return "", nil, fmt.Errorf("no preview for %s", c.MIMEType)
	}
}

// extractPDFText reads every page it can. Unreadable pages are skipped and
// reported through pageErr; err is set only when no page could be read.
func extractPDFText(path string) (text string, pageErr error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", nil, fmt.Errorf("stat pdf: %w", err)
	}

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	var (
		sb       strings.Builder
		read     int
		pageErrs []error
	)
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, err := pageText(page)
		if err != nil {
			pageErrs = append(pageErrs, fmt.Errorf("page %d: %w", i, err))
			continue
		}
		read++
		sb.WriteString(t)
		sb.WriteString("\n")
	}

	pageErr = errors.Join(pageErrs...)
	if read == 0 && pageErr != nil {
		return "", nil, fmt.Errorf("failed to extract pdf text: %w", pageErr)
	}
	return sb.String(), pageErr, nil
}

func extractDocxText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	// GetContent returns document.xml; paragraphs become line breaks.
	content := doc.Editable().GetContent()
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	return xmlTag.ReplaceAllString(content, " "), nil
}
