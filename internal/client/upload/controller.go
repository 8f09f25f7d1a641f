package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/resumecli/internal/client/client"
	"github.com/dmitrijs2005/resumecli/internal/client/models"
	"github.com/dmitrijs2005/resumecli/internal/logging"
)

var (
	ErrInProgress      = errors.New("an upload is already in progress")
	ErrNothingSelected = errors.New("no file selected")
	ErrAbandoned       = errors.New("upload abandoned")
	ErrDisposed        = errors.New("upload controller disposed")
)

// State of the upload workflow.
type State int

const (
	StateIdle State = iota
	StateSelected
	StateUploading
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelected:
		return "selected"
	case StateUploading:
		return "uploading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Uploader is the part of client.Client used for submission.
type Uploader interface {
	UploadResume(ctx context.Context, filename string, content io.Reader) (models.UploadOutcome, error)
}

// Status is a copy of the controller state for display.
type Status struct {
	State     State
	Candidate *Candidate
	Err       error
	Outcome   *models.UploadOutcome
}

// Message is the display text of Err, empty when there is none.
func (s Status) Message() string {
	return client.Message(s.Err)
}

// Controller drives one upload at a time.
type Controller struct {
	api  Uploader
	open func(path string) (io.ReadCloser, error)
	log  logging.Logger

	mu        sync.Mutex
	state     State
	candidate *Candidate
	err       error
	outcome   *models.UploadOutcome
	gen       uint64
	disposed  bool
}

func NewController(api Uploader, log logging.Logger) *Controller {
	if log == nil {
		log = logging.Discard()
	}
	return &Controller{
		api:  api,
		open: func(path string) (io.ReadCloser, error) { return os.Open(path) },
		log:  log.With("component", "upload"),
	}
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{State: c.state, Err: c.err}
	if c.candidate != nil {
		cand := *c.candidate
		st.Candidate = &cand
	}
	if c.outcome != nil {
		out := *c.outcome
		st.Outcome = &out
	}
	return st
}

// Select validates cand and makes it the current file. On a validation
// error the state is left as it was and the error is recorded.
func (c *Controller) Select(cand Candidate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.disposed:
		return ErrDisposed
	case c.state == StateUploading:
		return ErrInProgress
	}

	if err := Validate(cand); err != nil {
		c.err = err
		c.log.Debug(context.Background(), "file rejected", "name", cand.Name, "size", cand.SizeBytes, "error", err)
		return err
	}

	c.state = StateSelected
	c.candidate = &cand
	c.err = nil
	c.outcome = nil
	return nil
}

// Submit uploads the selected file. After a failure the same file may be
// submitted again.
func (c *Controller) Submit(ctx context.Context) (models.UploadOutcome, error) {
	c.mu.Lock()
	switch {
	case c.disposed:
		c.mu.Unlock()
		return models.UploadOutcome{}, ErrDisposed
	case c.state == StateUploading:
		c.mu.Unlock()
		return models.UploadOutcome{}, ErrInProgress
	case c.candidate == nil || (c.state != StateSelected && c.state != StateFailed):
		c.mu.Unlock()
		return models.UploadOutcome{}, ErrNothingSelected
	}
	cand := *c.candidate
	c.state = StateUploading
	c.err = nil
	gen := c.gen
	c.mu.Unlock()

	log := c.log.With("name", cand.Name, "size", cand.SizeBytes)
	log.Info(ctx, "upload started")

	out, err := c.upload(ctx, cand)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		log.Debug(ctx, "upload result dropped")
		return models.UploadOutcome{}, ErrAbandoned
	}

	if err != nil {
		c.state = StateFailed
		c.err = err
		log.Warn(ctx, "upload failed", "error", client.Message(err))
		return models.UploadOutcome{}, err
	}

	c.state = StateSucceeded
	c.outcome = &out
	c.candidate = nil
	log.Info(ctx, "upload finished", "resume_id", out.ResumeID)
	return out, nil
}

func (c *Controller) upload(ctx context.Context, cand Candidate) (models.UploadOutcome, error) {
	f, err := c.open(cand.Path)
	if err != nil {
		return models.UploadOutcome{}, fmt.Errorf("open %s: %w", cand.Name, err)
	}
	defer f.Close()

	return c.api.UploadResume(ctx, cand.Name, f)
}

// Clear returns to idle, dropping the file, error and outcome. A running
// upload is abandoned.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = StateIdle
	c.candidate = nil
	c.err = nil
	c.outcome = nil
}

// StartOver is Clear under the name the success view uses.
func (c *Controller) StartOver() {
	c.Clear()
}

// Dispose abandons any running upload; its response will not change state.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.disposed = true
}
