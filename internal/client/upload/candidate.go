// Package upload validates resume files and drives their submission.
package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxSizeBytes is the largest accepted file. The limit is inclusive: a file
// of exactly this size is accepted.
const MaxSizeBytes int64 = 10 * 1024 * 1024

var (
	ErrUnsupportedType = errors.New("Only PDF, DOCX, and TXT files are supported.")
	ErrTooLarge        = errors.New("File must be smaller than 10 MB.")
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEDOC  = "application/msword"
	MIMETXT  = "text/plain"
)

var (
	allowedMIMETypes = map[string]struct{}{
		MIMEPDF:  {},
		MIMEDOCX: {},
		MIMEDOC:  {},
		MIMETXT:  {},
	}
	allowedName = regexp.MustCompile(`(?i)\.(pdf|docx?|txt)$`)
)

// Candidate is a file chosen for upload but not yet submitted.
type Candidate struct {
	Path      string
	Name      string
	SizeBytes int64
	MIMEType  string
}

// NewCandidate stats path and sniffs its content type.
func NewCandidate(path string) (Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Candidate{}, fmt.Errorf("%s is a directory", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("detect type of %s: %w", path, err)
	}

	return Candidate{
		Path:      path,
		Name:      filepath.Base(path),
		SizeBytes: info.Size(),
		MIMEType:  baseMediaType(mtype.String()),
	}, nil
}

// baseMediaType drops parameters such as "; charset=utf-8".
func baseMediaType(s string) string {
	base, _, _ := strings.Cut(s, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// Validate checks type first, then size.
func Validate(c Candidate) error {
	_, typeOK := allowedMIMETypes[baseMediaType(c.MIMEType)]
	if !typeOK && !allowedName.MatchString(c.Name) {
		return ErrUnsupportedType
	}
	if c.SizeBytes > MaxSizeBytes {
		return ErrTooLarge
	}
	return nil
}
