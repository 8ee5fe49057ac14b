package dashboard

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davidayox123/acadrepo-tui/internal/api"
)

// stubFetcher counts calls and returns canned data or a configured error.
type stubFetcher struct {
	mu       sync.Mutex
	statsErr error
	docsErr  error
	actsErr  error

	statsCalls int32
	docsCalls  int32
	actsCalls  int32

	// delay slows each fetch so overlapping calls actually overlap.
	delay time.Duration
}

func (f *stubFetcher) DashboardStats(ctx context.Context, scope api.Scope) (*api.StatsView, error) {
	atomic.AddInt32(&f.statsCalls, 1)
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &api.StatsView{Role: scope.Role, TotalDocuments: 5}, nil
}

func (f *stubFetcher) RecentDocuments(ctx context.Context, scope api.Scope) ([]api.RecentDocument, error) {
	atomic.AddInt32(&f.docsCalls, 1)
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docsErr != nil {
		return nil, f.docsErr
	}
	return []api.RecentDocument{{ID: "doc-1", Title: "Thesis Draft"}}, nil
}

func (f *stubFetcher) RecentActivity(ctx context.Context, scope api.Scope) ([]api.ActivityItem, error) {
	atomic.AddInt32(&f.actsCalls, 1)
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.actsErr != nil {
		return nil, f.actsErr
	}
	return []api.ActivityItem{{ID: "act-1", Type: "upload"}}, nil
}

func (f *stubFetcher) setStatsErr(err error) {
	f.mu.Lock()
	f.statsErr = err
	f.mu.Unlock()
}

type fixedScope struct{ scope api.Scope }

func (s fixedScope) Scope() api.Scope { return s.scope }

// recordingNotifier collects notifications.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func newTestStore(f *stubFetcher, n Notifier, interval time.Duration) *Store {
	scope := fixedScope{scope: api.Scope{Role: api.RoleStudent, UserID: "u1"}}
	return New(f, scope, n, zap.NewNop(), interval)
}

func TestFetchAllPopulatesSnapshot(t *testing.T) {
	f := &stubFetcher{}
	s := newTestStore(f, nil, 0)

	require.NoError(t, s.FetchAll(context.Background()))

	snap := s.Snapshot()
	require.NotNil(t, snap.Stats)
	assert.Equal(t, 5, snap.Stats.TotalDocuments)
	assert.Len(t, snap.RecentDocuments, 1)
	assert.Len(t, snap.RecentActivity, 1)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Err)
	assert.False(t, snap.LastUpdated.IsZero())
}

func TestFetchAllKeepsStaleDataOnFailure(t *testing.T) {
	f := &stubFetcher{}
	s := newTestStore(f, nil, 0)
	require.NoError(t, s.FetchAll(context.Background()))
	before := s.Snapshot()

	f.setStatsErr(errors.New("boom"))
	err := s.FetchAll(context.Background())
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, before.Stats, snap.Stats, "stale stats should survive a failed refresh")
	assert.Equal(t, before.RecentDocuments, snap.RecentDocuments)
	assert.NotEmpty(t, snap.Err)
	assert.False(t, snap.Loading)
}

func TestClearErrorIsIdempotent(t *testing.T) {
	f := &stubFetcher{statsErr: errors.New("boom")}
	s := newTestStore(f, nil, 0)

	require.Error(t, s.FetchStats(context.Background()))
	require.NotEmpty(t, s.Snapshot().Err)

	s.ClearError()
	assert.Empty(t, s.Snapshot().Err)
	s.ClearError()
	assert.Empty(t, s.Snapshot().Err)
}

func TestNotifierSkips401(t *testing.T) {
	n := &recordingNotifier{}
	f := &stubFetcher{statsErr: &api.APIError{StatusCode: http.StatusUnauthorized, Message: "expired"}}
	s := newTestStore(f, n, 0)

	require.Error(t, s.FetchStats(context.Background()))
	assert.Empty(t, n.all(), "401 failures must not raise a notification")

	f.setStatsErr(&api.APIError{StatusCode: http.StatusInternalServerError, Message: "down"})
	require.Error(t, s.FetchStats(context.Background()))
	assert.Len(t, n.all(), 1, "non-401 failures notify once")
}

func TestOverlappingFetchesCoalesce(t *testing.T) {
	f := &stubFetcher{delay: 50 * time.Millisecond}
	s := newTestStore(f, nil, 0)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.FetchStats(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&f.statsCalls),
		"overlapping stats fetches should share one request")
}

func TestLoadingTracksInflight(t *testing.T) {
	f := &stubFetcher{delay: 50 * time.Millisecond}
	s := newTestStore(f, nil, 0)

	done := make(chan struct{})
	go func() {
		_ = s.FetchStats(context.Background())
		close(done)
	}()

	// The loading flag rises as soon as the fetch begins.
	deadline := time.After(time.Second)
	for !s.Snapshot().Loading {
		select {
		case <-deadline:
			t.Fatal("Loading never became true")
		case <-time.After(time.Millisecond):
		}
	}

	<-done
	assert.False(t, s.Snapshot().Loading)
}

func TestStartAutoRefreshIsIdempotent(t *testing.T) {
	f := &stubFetcher{}
	s := newTestStore(f, nil, 25*time.Millisecond)

	s.StartAutoRefresh()
	s.StartAutoRefresh()
	time.Sleep(90 * time.Millisecond)
	s.StopAutoRefresh()
	s.StopAutoRefresh()

	// A doubled timer would roughly double the call count; one ticker at
	// 25ms over 90ms fires at most 3-4 times, each fanning into one stats
	// call.
	calls := atomic.LoadInt32(&f.statsCalls)
	assert.LessOrEqual(t, calls, int32(5), "second StartAutoRefresh must not add a timer")
	assert.GreaterOrEqual(t, calls, int32(1), "timer should have fired at least once")

	// Restarting after a stop works.
	s.StartAutoRefresh()
	s.StopAutoRefresh()
}

func TestPollSkippedWhileLiveAndFresh(t *testing.T) {
	f := &stubFetcher{}
	s := newTestStore(f, nil, time.Hour)

	require.NoError(t, s.FetchAll(context.Background()))
	s.SetLive(true)
	assert.False(t, s.shouldPoll(), "fresh snapshot with live push should not poll")

	s.SetLive(false)
	assert.True(t, s.shouldPoll(), "without push the poll always fires")
}

func TestSubscribeBroadcasts(t *testing.T) {
	f := &stubFetcher{}
	s := newTestStore(f, nil, 0)
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	require.NoError(t, s.FetchStats(context.Background()))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no snapshot change signal received")
	}
}

func TestResetDropsData(t *testing.T) {
	f := &stubFetcher{}
	s := newTestStore(f, nil, 0)
	require.NoError(t, s.FetchAll(context.Background()))

	s.Reset()
	snap := s.Snapshot()
	assert.Nil(t, snap.Stats)
	assert.Nil(t, snap.RecentDocuments)
	assert.True(t, snap.LastUpdated.IsZero())
}
