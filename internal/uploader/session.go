package uploader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"busgallery/internal/archive"
)

// State is the upload lifecycle of a session.
type State int

const (
	Idle State = iota
	Uploading
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Uploading:
		return "uploading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// transitions lists every allowed move. Anything absent is forbidden,
// including Uploading -> Uploading.
var transitions = map[State][]State{
	Idle:      {Uploading},
	Uploading: {Succeeded, Failed},
	Succeeded: {Idle},
	Failed:    {Idle},
}

// CanTransition reports whether the session may move from one state to another.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

const (
	SuccessMessage    = "Upload successful!"
	DefaultResetDelay = time.Second
)

var (
	ErrUploadInFlight    = errors.New("an upload is already in progress")
	ErrValidation        = errors.New("Please select a bus and choose at least one file.")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Sender delivers one batch. *Client implements it.
type Sender interface {
	Send(ctx context.Context, b Batch, progress ProgressFunc) (*UploadResponse, error)
}

// Session holds the queue and upload state of one interactive user.
// At most one upload runs at a time.
type Session struct {
	mu         sync.Mutex
	sender     Sender
	state      State
	busID      string
	batchKey   string
	queue      []archive.File
	progress   int
	message    string
	resetDelay time.Duration
	resetTimer *time.Timer
	onProgress ProgressFunc
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithResetDelay sets how long a finished upload's progress stays visible.
// Zero resets immediately.
func WithResetDelay(d time.Duration) SessionOption {
	return func(s *Session) { s.resetDelay = d }
}

// WithProgress observes progress updates as they happen.
func WithProgress(fn ProgressFunc) SessionOption {
	return func(s *Session) { s.onProgress = fn }
}

// WithBatchKey resumes an earlier batch, typically one whose upload failed.
func WithBatchKey(key string) SessionOption {
	return func(s *Session) {
		if key != "" {
			s.batchKey = key
		}
	}
}

// NewSession creates an idle session with an empty queue.
func NewSession(sender Sender, opts ...SessionOption) *Session {
	s := &Session{
		sender:     sender,
		state:      Idle,
		batchKey:   uuid.NewString(),
		resetDelay: DefaultResetDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectBus sets the target bus. Switching from one bus to another starts a new batch.
func (s *Session) SelectBus(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busID != "" && id != s.busID {
		s.batchKey = uuid.NewString()
	}
	s.busID = id
}

// AddFiles normalizes the selected files and appends the result to the queue.
// Archives that fail to extract are reported and skipped.
func (s *Session) AddFiles(inputs ...archive.File) []*archive.ExtractError {
	res := archive.Normalize(inputs)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, res.Files...)
	if len(res.Errors) > 0 {
		s.message = archive.ExtractFailedMessage
	}
	return res.Errors
}

// Upload sends the queued files. On success the sent files leave the queue and a new
// batch key is drawn; on failure everything is kept so a retry reuses the same key.
func (s *Session) Upload(ctx context.Context) (*UploadResponse, error) {
	batch, err := s.begin()
	if err != nil {
		return nil, err
	}

	resp, sendErr := s.sender.Send(ctx, batch, s.setProgress)

	s.mu.Lock()
	defer s.mu.Unlock()
	if sendErr != nil {
		s.message = GenericFailureMessage
		var uerr *UploadError
		if errors.As(sendErr, &uerr) {
			s.message = uerr.Message
		}
		s.mustTransition(Failed)
	} else {
		s.queue = append([]archive.File(nil), s.queue[len(batch.Files):]...)
		s.batchKey = uuid.NewString()
		s.message = SuccessMessage
		s.progress = 100
		s.mustTransition(Succeeded)
	}
	s.scheduleReset()
	return resp, sendErr
}

func (s *Session) begin() (Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Uploading {
		return Batch{}, ErrUploadInFlight
	}
	if s.state != Idle {
		s.resetLocked()
	}
	if s.busID == "" || len(s.queue) == 0 {
		s.message = ErrValidation.Error()
		return Batch{}, ErrValidation
	}

	s.mustTransition(Uploading)
	s.progress = 0
	s.message = ""
	return Batch{
		BusID:    s.busID,
		BatchKey: s.batchKey,
		Files:    append([]archive.File(nil), s.queue...),
	}, nil
}

func (s *Session) setProgress(p int) {
	s.mu.Lock()
	if p > s.progress {
		s.progress = p
	}
	fn := s.onProgress
	s.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

func (s *Session) scheduleReset() {
	if s.resetDelay <= 0 {
		s.resetLocked()
		return
	}
	s.resetTimer = time.AfterFunc(s.resetDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state == Succeeded || s.state == Failed {
			s.resetLocked()
		}
	})
}

// resetLocked returns a finished session to Idle. Caller holds mu.
func (s *Session) resetLocked() {
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
	s.progress = 0
	s.mustTransition(Idle)
}

func (s *Session) transition(to State) error {
	if !CanTransition(s.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, to)
	}
	s.state = to
	return nil
}

// mustTransition is used where the caller has already established the move is legal.
func (s *Session) mustTransition(to State) {
	if err := s.transition(to); err != nil {
		panic(err)
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Message is the last user-facing status or error text.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Session) BatchKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchKey
}

// Queue returns a copy of the files waiting to be uploaded.
func (s *Session) Queue() []archive.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]archive.File(nil), s.queue...)
}
