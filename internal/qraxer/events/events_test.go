package events

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublishStateChanged(t *testing.T) {
	pubsub := NewInMemory(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := pubsub.Subscribe(ctx, TopicRepairStateChanged)
	require.NoError(t, err)

	p := NewPublisher(pubsub)
	t.Cleanup(func() { _ = p.Close() })

	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, p.PublishStateChanged(ctx, RepairStateChanged{
		RepairID: 42, RepairCode: "RO/00042", OldState: "confirmed", NewState: "under_repair", UserID: "7", At: at,
	}))

	select {
	case msg := <-msgs:
		msg.Ack()
		require.NotEmpty(t, msg.UUID)
		require.Equal(t, TopicRepairStateChanged, msg.Metadata.Get("topic"))

		var got RepairStateChanged
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		require.Equal(t, int64(42), got.RepairID)
		require.Equal(t, "under_repair", got.NewState)
		require.True(t, got.At.Equal(at))
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestPublishCheckinWithoutSubscriber(t *testing.T) {
	p := NewPublisher(NewInMemory(slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(func() { _ = p.Close() })

	err := p.PublishCheckin(context.Background(), RepairCheckedIn{NotificationID: "n1", RepairID: 1})
	require.NoError(t, err)
}

func TestPublishAfterClose(t *testing.T) {
	p := NewPublisher(NewInMemory(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, p.Close())
	require.Error(t, p.PublishCheckin(context.Background(), RepairCheckedIn{}))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTailLogsEvents(t *testing.T) {
	var out syncBuffer
	logger := slog.New(slog.NewJSONHandler(&out, nil))

	pubsub := NewInMemory(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, Tail(ctx, pubsub, logger))

	p := NewPublisher(pubsub)
	t.Cleanup(func() { _ = p.Close() })
	require.NoError(t, p.PublishCheckin(ctx, RepairCheckedIn{NotificationID: "n1", RepairCode: "RO/00007"}))

	require.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, TopicRepairCheckin) && strings.Contains(s, "RO/00007")
	}, 2*time.Second, 10*time.Millisecond)
}
