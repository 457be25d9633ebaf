package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const defaultDelay = 100 * time.Millisecond

// Spinner animates a one-line progress message on a terminal.
type Spinner struct {
	frames []string
	delay  time.Duration
	out    io.Writer

	mu      sync.Mutex
	message string
	width   int
	active  bool
	stop    chan struct{}
	done    chan struct{}
}

func New(out io.Writer, message string) *Spinner {
	return &Spinner{
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		delay:   defaultDelay,
		out:     out,
		message: message,
	}
}

func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(s.stop, s.done)
}

func (s *Spinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.draw(s.frames[i%len(s.frames)])
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := fmt.Sprintf("%s %s", frame, s.message)
	if n := utf8.RuneCountInString(line); n > s.width {
		s.width = n
	}
	_, _ = fmt.Fprintf(s.out, "\r%-*s", s.width, line)
}

// Stop halts the animation and clears the line. It returns once the line is clear.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done

	s.mu.Lock()
	_, _ = fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.width)+"\r")
	s.mu.Unlock()
}

func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}
