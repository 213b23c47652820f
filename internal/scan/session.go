package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

type State int

const (
	StateIdle State = iota
	StateRequesting
	StateStreaming
	StateDecoded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateDecoded:
		return "decoded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Outcome is the single result of a session: a barcode, or the fatal error.
type Outcome struct {
	Barcode string
	Err     error
}

type Option func(*Session)

// WithErrorHook receives decode errors other than ErrNoSymbol. The loop keeps running.
func WithErrorHook(fn func(error)) Option {
	return func(s *Session) { s.onError = fn }
}

func WithConstraints(c Constraints) Option {
	return func(s *Session) { s.constraints = c }
}

// Session owns one camera and runs at most one decode loop at a time.
type Session struct {
	camera      Camera
	decoder     Decoder
	constraints Constraints
	onError     func(error)

	startMu sync.Mutex
	sem     chan struct{}

	mu      sync.Mutex
	state   State
	last    Outcome
	current *run
}

type run struct {
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

func NewSession(camera Camera, decoder Decoder, opts ...Option) *Session {
	s := &Session{
		camera:      camera,
		decoder:     decoder,
		constraints: DefaultConstraints,
		sem:         make(chan struct{}, 1),
		onError: func(err error) {
			slog.Warn("barcode decode failed", "error", err)
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start stops any running session, opens the camera and starts decoding.
// The returned channel yields at most one Outcome and is then closed.
func (s *Session) Start(ctx context.Context, dev Device) (<-chan Outcome, error) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.Stop()

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &run{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	s.current = r
	s.state = StateRequesting
	s.last = Outcome{}
	s.mu.Unlock()

	stream, err := s.camera.Open(runCtx, dev, s.constraints)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrCameraAccess, dev.Path, err)
		s.release(r, nil)
		s.settle(r, StateFailed, Outcome{Err: err}, nil)

		return nil, err
	}

	s.mu.Lock()
	if r.stopped {
		s.mu.Unlock()
		s.release(r, stream)

		return nil, context.Canceled
	}
	s.state = StateStreaming
	s.mu.Unlock()

	out := make(chan Outcome, 1)

	go s.loop(runCtx, r, stream, out)

	return out, nil
}

func (s *Session) loop(ctx context.Context, r *run, stream Stream, out chan Outcome) {
	defer close(out)
	defer s.release(r, stream)

	for {
		if err := ctx.Err(); err != nil {
			s.settle(r, StateIdle, Outcome{Err: err}, nil)
			return
		}

		frame, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.settle(r, StateIdle, Outcome{Err: ctx.Err()}, nil)
				return
			}

			s.settle(r, StateFailed, Outcome{Err: fmt.Errorf("%w: %w", ErrStreamLost, err)}, out)

			return
		}

		code, err := s.decoder.Decode(frame)
		if err != nil {
			if !errors.Is(err, ErrNoSymbol) && s.onError != nil {
				s.onError(err)
			}

			continue
		}

		s.settle(r, StateDecoded, Outcome{Barcode: code}, out)

		return
	}
}

// settle records the final state of r and publishes the outcome unless r was stopped.
func (s *Session) settle(r *run, state State, o Outcome, out chan Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.stopped || s.current != r {
		return
	}

	s.state = state
	s.last = o

	if out != nil {
		out <- o
	}
}

func (s *Session) release(r *run, stream Stream) {
	if stream != nil {
		if err := stream.Close(); err != nil {
			slog.Warn("closing camera stream", "error", err)
		}
	}

	r.cancel()
	<-s.sem
	close(r.done)
}

// Stop ends the running session and returns once the camera is released.
// No outcome is delivered after Stop returns. It is safe to call repeatedly.
func (s *Session) Stop() {
	s.mu.Lock()
	r := s.current
	if r == nil || r.stopped {
		s.mu.Unlock()
		return
	}

	r.stopped = true
	if s.state == StateRequesting || s.state == StateStreaming {
		s.state = StateIdle
	}
	s.mu.Unlock()

	r.cancel()
	<-r.done
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Last returns the outcome of the most recent finished session.
func (s *Session) Last() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last
}
