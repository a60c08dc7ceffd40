package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "club.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	// Tasks database lives alongside the main database
	tasksDBPath := filepath.Join(tmpDir, "club-tasks.db")
	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	assert.NoError(t, client.Close())
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "club.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

type fakeWaitingList struct {
	userIDs []uint
}

func (f *fakeWaitingList) WaitingUserIDs(bookID uint) ([]uint, error) {
	return f.userIDs, nil
}

type fakeBatchNotifier struct {
	calls  int
	lastID []uint
	title  string
}

func (f *fakeBatchNotifier) CreateBatch(userIDs []uint, title, message, link string) (int, int) {
	f.calls++
	f.lastID = userIDs
	f.title = title
	return len(userIDs), 0
}

func TestBookAvailableProcessor(t *testing.T) {
	waiting := &fakeWaitingList{userIDs: []uint{1, 2, 3}}
	notifier := &fakeBatchNotifier{}

	processor := BookAvailableProcessor(waiting, notifier)
	err := processor(context.Background(), BookAvailableTask{BookID: 7, Title: "The Trial"})
	require.NoError(t, err)

	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, []uint{1, 2, 3}, notifier.lastID)
	assert.Equal(t, "Book available", notifier.title)
}

func TestBookAvailableProcessor_EmptyWaitingList(t *testing.T) {
	waiting := &fakeWaitingList{}
	notifier := &fakeBatchNotifier{}

	processor := BookAvailableProcessor(waiting, notifier)
	err := processor(context.Background(), BookAvailableTask{BookID: 7, Title: "The Trial"})
	require.NoError(t, err)

	assert.Equal(t, 0, notifier.calls)
}

type fakeAttendeeList struct {
	userIDs []uint
}

func (f *fakeAttendeeList) GoingUserIDs(eventID uint) ([]uint, error) {
	return f.userIDs, nil
}

func TestEventCancelledProcessor(t *testing.T) {
	attendees := &fakeAttendeeList{userIDs: []uint{4, 5}}
	notifier := &fakeBatchNotifier{}

	processor := EventCancelledProcessor(attendees, notifier)
	err := processor(context.Background(), EventCancelledTask{EventID: 3, Title: "Book swap"})
	require.NoError(t, err)

	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, []uint{4, 5}, notifier.lastID)
	assert.Equal(t, "Event cancelled", notifier.title)
}
