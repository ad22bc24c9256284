package notification

import (
	"bytes"
	"context"
	"testing"
)

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriterNotifier(&buf)
	ctx := context.Background()

	if err := n.Send(ctx, Success("$%.2f added to your balance!", 5.0)); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := n.Send(ctx, Error("Insufficient balance")); err != nil {
		t.Fatalf("send: %v", err)
	}

	want := "[✓] $5.00 added to your balance!\n[!] Insufficient balance\n"
	if buf.String() != want {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	if _, ok := r.Last(); ok {
		t.Fatal("expected empty recorder")
	}
	_ = r.Send(context.Background(), Message{Kind: KindInfo, Body: "one"})
	_ = r.Send(context.Background(), Message{Kind: KindError, Body: "two"})

	last, ok := r.Last()
	if !ok || last.Body != "two" {
		t.Fatalf("unexpected last message %+v", last)
	}
	if len(r.Messages()) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(r.Messages()))
	}
}

func TestLoggerNotifierNilSafe(t *testing.T) {
	var n *LoggerNotifier
	if err := n.Send(context.Background(), Error("x")); err != nil {
		t.Fatalf("nil notifier should be a no-op: %v", err)
	}
}

func TestFanoutDeliversToEveryNotifier(t *testing.T) {
	first, second := &Recorder{}, &Recorder{}
	fan := Fanout{first, nil, second}

	if err := fan.Send(context.Background(), Error("Payment failed")); err != nil {
		t.Fatalf("send: %v", err)
	}
	for i, r := range []*Recorder{first, second} {
		last, ok := r.Last()
		if !ok || last.Body != "Payment failed" || last.Kind != KindError {
			t.Fatalf("recorder %d got %+v", i, last)
		}
	}
}
