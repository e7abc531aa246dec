package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "duesgate/pkg/domain"
)

type captureStore struct {
	events []Event
	err    error
}

func (s *captureStore) Append(_ context.Context, event Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordStampsTimestampAndRequestID(t *testing.T) {
	store := &captureStore{}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	recorder := NewRecorder(store, discardLogger(), 4,
		WithClock(func() time.Time { return now }),
		WithRequestIDFunc(func(context.Context) string { return "req-123" }),
	)

	err := recorder.Record(context.Background(), Event{
		Member: id.MemberID(uuid.New()),
		Action: string(EventMemberRegistered),
	})
	require.NoError(t, err)
	require.Len(t, store.events, 1)
	assert.Equal(t, now, store.events[0].Timestamp)
	assert.Equal(t, "req-123", store.events[0].RequestID)
}

func TestRecordFailsClosedOnAppendError(t *testing.T) {
	store := &captureStore{err: errors.New("disk full")}
	recorder := NewRecorder(store, discardLogger(), 4)

	err := recorder.Record(context.Background(), Event{Action: string(EventGraceUpdated)})
	require.Error(t, err)

	// Nothing reaches the publish queue when the append failed.
	select {
	case <-recorder.Queue():
		t.Fatal("event queued despite failed append")
	default:
	}
}

func TestRecordQueuesForPublishing(t *testing.T) {
	store := &captureStore{}
	recorder := NewRecorder(store, discardLogger(), 4)

	require.NoError(t, recorder.Record(context.Background(), Event{Action: string(EventMemberUpdated)}))

	select {
	case event := <-recorder.Queue():
		assert.Equal(t, string(EventMemberUpdated), event.Action)
	default:
		t.Fatal("expected a queued event")
	}
}

func TestRecordFullQueueDropsPublishNotAppend(t *testing.T) {
	store := &captureStore{}
	recorder := NewRecorder(store, discardLogger(), 1)

	require.NoError(t, recorder.Record(context.Background(), Event{Action: "a"}))
	// Queue is full now; the append must still succeed.
	require.NoError(t, recorder.Record(context.Background(), Event{Action: "b"}))
	assert.Len(t, store.events, 2)
}

func TestEventCategories(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventMemberRegistered.Category())
	assert.Equal(t, CategoryCompliance, EventMemberReset.Category())
	assert.Equal(t, CategorySecurity, EventOwnershipTransferred.Category())
	assert.Equal(t, CategoryOperations, EventStatusCheckedPublic.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("unknown").Category())
}
