package mq

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeReader struct {
	msgs    []kafka.Message
	next    int
	commits []int64
	closed  bool
}

func (f *fakeReader) FetchMessage(_ context.Context) (kafka.Message, error) {
	if f.next >= len(f.msgs) {
		return kafka.Message{}, io.EOF
	}
	msg := f.msgs[f.next]
	f.next++
	return msg, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, msg := range msgs {
		f.commits = append(f.commits, msg.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func TestConsumerCommitsAfterSuccessfulHandle(t *testing.T) {
	reader := &fakeReader{msgs: []kafka.Message{
		{Offset: 4, Value: []byte("a")},
		{Offset: 5, Value: []byte("b")},
	}}
	var handled int
	consumer := &Consumer{reader: reader, handler: func(context.Context, Message) error {
		handled++
		return nil
	}}

	err := consumer.Run(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected reader exhaustion, got %v", err)
	}
	if handled != 2 {
		t.Fatalf("expected 2 handled messages, got %d", handled)
	}
	if len(reader.commits) != 2 || reader.commits[0] != 4 || reader.commits[1] != 5 {
		t.Fatalf("unexpected commits %v", reader.commits)
	}
}

func TestConsumerHaltsOnTransientFailureWithoutCommit(t *testing.T) {
	boom := errors.New("store unavailable")
	reader := &fakeReader{msgs: []kafka.Message{
		{Offset: 5, Value: []byte("bad")},
		{Offset: 6, Value: []byte("fine")},
	}}
	consumer := &Consumer{reader: reader, handler: func(_ context.Context, msg Message) error {
		if string(msg.Value) == "bad" {
			return boom
		}
		return nil
	}}

	err := consumer.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
	// No offset may be committed: committing 6 would advance the group
	// watermark past the failed offset 5 and drop it permanently.
	if len(reader.commits) != 0 {
		t.Fatalf("expected no commits, got %v", reader.commits)
	}
	if reader.next != 1 {
		t.Fatalf("expected consumption to stop at the failed message, fetched %d", reader.next)
	}
}

func TestConsumerDiscardsPermanentFailures(t *testing.T) {
	reader := &fakeReader{msgs: []kafka.Message{
		{Offset: 5, Value: []byte("garbage")},
		{Offset: 6, Value: []byte("fine")},
	}}
	var goodHandled int
	consumer := &Consumer{reader: reader, handler: func(_ context.Context, msg Message) error {
		if string(msg.Value) == "garbage" {
			return Discard(errors.New("unreadable payload"))
		}
		goodHandled++
		return nil
	}}

	err := consumer.Run(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected reader exhaustion, got %v", err)
	}
	if goodHandled != 1 {
		t.Fatalf("expected the message after the discard to be handled, got %d", goodHandled)
	}
	if len(reader.commits) != 2 || reader.commits[0] != 5 || reader.commits[1] != 6 {
		t.Fatalf("unexpected commits %v", reader.commits)
	}
}

func TestDiscardNil(t *testing.T) {
	if Discard(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
	if !errors.Is(Discard(errors.New("x")), ErrDiscard) {
		t.Fatal("expected wrapped error to match ErrDiscard")
	}
}
