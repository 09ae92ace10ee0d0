package kafkaclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// mockReader simulates the kafka-go Reader for unit testing.
type mockReader struct {
	messages   chan kafka.Message
	commitChan chan kafka.Message
	wg         sync.WaitGroup
	isClosed   bool
}

func newMockReader() *mockReader {
	return &mockReader{
		messages:   make(chan kafka.Message, 10),
		commitChan: make(chan kafka.Message, 10),
	}
}

// StartSimulatingConsumption produces count messages, then closes the stream.
func (mr *mockReader) StartSimulatingConsumption(count int) {
	mr.wg.Add(1)
	go func() {
		defer mr.wg.Done()
		defer close(mr.messages)

		for i := 0; i < count; i++ {
			mr.messages <- kafka.Message{
				Topic:     "test-topic",
				Partition: 0,
				Offset:    int64(i),
				Value:     []byte(fmt.Sprintf("mock-message-%d", i)),
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()
}

func (mr *mockReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if mr.isClosed {
		return kafka.Message{}, io.EOF
	}
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case msg, ok := <-mr.messages:
		if !ok {
			return kafka.Message{}, io.EOF
		}
		return msg, nil
	}
}

func (mr *mockReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	if mr.isClosed {
		return fmt.Errorf("kafka: reader closed")
	}
	for _, msg := range msgs {
		mr.commitChan <- msg
	}
	return nil
}

func (mr *mockReader) Close() error {
	mr.isClosed = true
	close(mr.commitChan)
	return nil
}

func TestKafkaConsumer_ConsumeAndCommit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reader := newMockReader()
	consumer := newConsumer(reader, zap.NewNop())

	const expectedMessages = 3
	reader.StartSimulatingConsumption(expectedMessages)
	consumer.StartConsuming(ctx)

	received := 0
	for msg := range consumer.Messages() {
		if want := fmt.Sprintf("mock-message-%d", received); string(msg.Value) != want {
			t.Errorf("Expected message value %q, got %q", want, string(msg.Value))
		}
		if err := consumer.CommitOffset(ctx, msg); err != nil {
			t.Errorf("CommitOffset() failed: %v", err)
		}
		received++
	}
	if received != expectedMessages {
		t.Errorf("Expected to receive %d messages, but got %d", expectedMessages, received)
	}

	consumer.Stop()

	committed := 0
	for range reader.commitChan {
		committed++
	}
	if committed != expectedMessages {
		t.Errorf("Expected to commit %d messages, but committed %d", expectedMessages, committed)
	}
}

func TestKafkaConsumer_GracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reader := newMockReader()
	consumer := newConsumer(reader, zap.NewNop())
	reader.StartSimulatingConsumption(100)
	consumer.StartConsuming(ctx)

	for i := 0; i < 5; i++ {
		select {
		case <-consumer.Messages():
		case <-time.After(500 * time.Millisecond):
			t.Fatal("Timed out while waiting for a message.")
		}
	}

	consumer.Stop()
	consumer.Stop()

	remaining := 0
	for range consumer.Messages() {
		remaining++
	}
	if remaining > 0 {
		t.Errorf("Expected 0 messages after consumer stop, but found %d", remaining)
	}
	if !reader.isClosed {
		t.Error("Expected mock reader to be closed after Stop()")
	}
}

type mockWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *mockWriter) Close() error { return nil }

func TestProducer_PublishJSON(t *testing.T) {
	w := &mockWriter{}
	p := &Producer{writer: w}

	if err := p.PublishJSON(context.Background(), "thai/tokyo-23", map[string]string{"count": "60+"}); err != nil {
		t.Fatal(err)
	}
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "thai/tokyo-23" {
		t.Fatalf("unexpected messages: %+v", w.msgs)
	}
	var got map[string]string
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil || got["count"] != "60+" {
		t.Errorf("unexpected value %s (%v)", w.msgs[0].Value, err)
	}

	w.err = errors.New("broker down")
	if err := p.PublishJSON(context.Background(), "k", 1); err == nil {
		t.Error("expected write error")
	}
	if err := p.PublishJSON(context.Background(), "k", make(chan int)); err == nil {
		t.Error("expected encode error")
	}
}

func TestNewProducer_FlushesSingleMessages(t *testing.T) {
	w := newWriter([]string{"localhost:9092"}, "cuisinemap.events")

	if w.BatchSize != 1 {
		t.Errorf("BatchSize = %d; want 1", w.BatchSize)
	}
	if w.BatchTimeout <= 0 || w.BatchTimeout > 50*time.Millisecond {
		t.Errorf("BatchTimeout = %s; want a short flush", w.BatchTimeout)
	}
	if w.Topic != "cuisinemap.events" {
		t.Errorf("Topic = %q", w.Topic)
	}
	if _, ok := w.Balancer.(*kafka.Hash); !ok {
		t.Errorf("Balancer = %T; want *kafka.Hash", w.Balancer)
	}

	p := NewProducer([]string{"localhost:9092"}, "cuisinemap.events")
	if _, ok := p.writer.(*kafka.Writer); !ok {
		t.Errorf("writer = %T; want *kafka.Writer", p.writer)
	}
}
