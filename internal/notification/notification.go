package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Kind classifies a notification for presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Message is a dismissible, user-facing notification.
type Message struct {
	Kind Kind
	Body string
}

// Notifier delivers notifications to whatever surface the user is looking at.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// Success builds a success message.
func Success(format string, args ...any) Message {
	return Message{Kind: KindSuccess, Body: fmt.Sprintf(format, args...)}
}

// Error builds an error message.
func Error(body string) Message {
	return Message{Kind: KindError, Body: body}
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "body", message.Body)
	return nil
}

// WriterNotifier renders notifications as single toast lines on a terminal.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier constructs a notifier writing to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Send prints the message prefixed by a marker for its kind.
func (n *WriterNotifier) Send(_ context.Context, message Message) error {
	marker := "i"
	switch message.Kind {
	case KindSuccess:
		marker = "✓"
	case KindError:
		marker = "!"
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintf(n.w, "[%s] %s\n", marker, message.Body)
	return err
}

// Recorder keeps every message it receives. Useful for tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Send records the message.
func (r *Recorder) Send(_ context.Context, message Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Last returns the most recent message, if any.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// Fanout delivers each message to every notifier in order and joins their errors.
type Fanout []Notifier

// Send forwards message to all notifiers.
func (f Fanout) Send(ctx context.Context, message Message) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
