package service

import (
	"context"
	"encoding/json"
	"testing"

	"thermacore/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAlarms() []domain.Notification {
	return []domain.Notification{
		{Id: 7, Kind: domain.NOTIFICATION_ALARM, Message: "ThermaCore Unit 003 - NH3 LEAK DETECTED", Timestamp: "2025-09-09 15:30"},
		{Id: 8, Kind: domain.NOTIFICATION_ALARM, Message: "ThermaCore Unit 014 - NH3 LEAK DETECTED", Timestamp: "2025-09-09 15:15"},
	}
}

func testAlerts() []domain.Notification {
	return []domain.Notification{
		{Id: 1, Kind: domain.NOTIFICATION_ALERT, Message: "ThermaCore Unit 001 - Unit Offline", Timestamp: "2025-09-09 14:45"},
		{Id: 2, Kind: domain.NOTIFICATION_ALERT, Message: "ThermaCore Unit 002 - Low Water Level", Timestamp: "2025-09-09 14:15"},
		{Id: 3, Kind: domain.NOTIFICATION_ALERT, Message: "ThermaCore Unit 003 - Maintenance Scheduled", Timestamp: "2025-09-09 13:30", Status: domain.STATUS_COMPLETED},
	}
}

func newTestLedger(kv *fakeKV) *NotificationLedger {
	l := NewNotificationLedger(kv, []int{3, 4, 5}, nil, zap.NewNop())
	l.SetNotifications(testAlarms(), testAlerts())
	return l
}

func ids(ns []domain.Notification) []int {
	var out []int
	for _, n := range ns {
		out = append(out, n.Id)
	}
	return out
}

func TestVisibleFiltersAlarmsByRole(t *testing.T) {
	l := newTestLedger(newFakeKV())

	assert.Equal(t, []int{7, 8, 1, 2, 3}, ids(l.Visible(domain.ROLE_ADMIN)))
	assert.Equal(t, []int{7, 1, 2, 3}, ids(l.Visible(domain.ROLE_USER)))
	assert.Equal(t, 5, l.VisibleCountFor(domain.ROLE_ADMIN))
	assert.Equal(t, 4, l.VisibleCountFor(domain.ROLE_USER))
}

func TestMarkAllViewedIsMonotonic(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(newFakeKV())

	l.MarkAllViewed(ctx, domain.ROLE_ADMIN)
	before := l.ViewedIds()
	assert.Equal(t, []int{1, 2, 3, 7, 8}, before)
	assert.Zero(t, l.UnviewedCount(domain.ROLE_ADMIN))

	// the notification list changes and a restricted user opens the panel
	l.SetNotifications(testAlarms()[:1], []domain.Notification{{Id: 9, Kind: domain.NOTIFICATION_ALERT}})
	assert.Equal(t, 1, l.UnviewedCount(domain.ROLE_USER))
	l.MarkAllViewed(ctx, domain.ROLE_USER)

	after := l.ViewedIds()
	assert.Subset(t, after, before)
	assert.Contains(t, after, 9)
}

func TestOpenPanelWritesSnapshotAndMarksViewed(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	l := newTestLedger(kv)
	require.Equal(t, 4, l.UnviewedCount(domain.ROLE_USER))

	snapshot := l.OpenPanel(ctx, domain.ROLE_USER)
	assert.Zero(t, l.UnviewedCount(domain.ROLE_USER))
	assert.False(t, l.IsViewed(8), "hidden alarm is not marked viewed")
	assert.Equal(t, 1, l.UnviewedCount(domain.ROLE_ADMIN))

	var saved []domain.Notification
	require.NoError(t, json.Unmarshal(kv.data[UNRESOLVED_SNAPSHOT_KEY], &saved))
	assert.Equal(t, snapshot, saved)

	var viewed []int
	require.NoError(t, json.Unmarshal(kv.data[VIEWED_IDS_KEY], &viewed))
	assert.Equal(t, []int{1, 2, 3, 7}, viewed)
}

func TestSnapshotStatusOverrides(t *testing.T) {
	l := newTestLedger(newFakeKV())

	snapshot := l.BuildUnresolvedSnapshot(domain.ROLE_ADMIN)
	statuses := map[int]domain.NotificationStatus{}
	for _, n := range snapshot {
		statuses[n.Id] = n.Status
	}
	assert.Equal(t, map[int]domain.NotificationStatus{
		7: domain.STATUS_UNRESOLVED,
		8: domain.STATUS_UNRESOLVED,
		1: domain.STATUS_UNRESOLVED,
		2: domain.STATUS_UNRESOLVED,
		3: domain.STATUS_COMPLETED,
	}, statuses)

	// the ledger's own records are not rewritten
	assert.Empty(t, l.Visible(domain.ROLE_ADMIN)[0].Status)

	// viewed state has no influence on the snapshot
	l.MarkAllViewed(context.Background(), domain.ROLE_ADMIN)
	assert.Equal(t, snapshot, l.BuildUnresolvedSnapshot(domain.ROLE_ADMIN))
}

func TestOpenHistoryDoesNotMarkViewed(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	l := newTestLedger(kv)

	written := l.OpenHistory(ctx, domain.ROLE_ADMIN)
	assert.Equal(t, 5, l.UnviewedCount(domain.ROLE_ADMIN))

	history, err := l.History(ctx)
	require.NoError(t, err)
	assert.Equal(t, written, history)
}

func TestHistoryWithoutSnapshotIsEmpty(t *testing.T) {
	history, err := newTestLedger(newFakeKV()).History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestViewedIdsSurviveSessions(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	newTestLedger(kv).OpenPanel(ctx, domain.ROLE_ADMIN)

	next := newTestLedger(kv)
	next.HydrateViewed(ctx)
	assert.Zero(t, next.UnviewedCount(domain.ROLE_ADMIN))

	next.Reset(ctx)
	assert.Empty(t, next.ViewedIds())
	assert.Equal(t, 5, next.UnviewedCount(domain.ROLE_ADMIN))
}

func TestSnapshotWriteFailureIsNotFatal(t *testing.T) {
	kv := newFakeKV()
	kv.failSet = true
	l := newTestLedger(kv)

	snapshot := l.OpenPanel(context.Background(), domain.ROLE_ADMIN)
	assert.Len(t, snapshot, 5)
	assert.Zero(t, l.UnviewedCount(domain.ROLE_ADMIN))
}
