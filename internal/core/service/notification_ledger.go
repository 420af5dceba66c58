package service

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"

	"thermacore/internal/core/domain"
	"thermacore/internal/core/port"
	"thermacore/internal/metrics"

	"go.uber.org/zap"
)

const (
	UNRESOLVED_SNAPSHOT_KEY = "unresolvedNotifications"
	VIEWED_IDS_KEY          = "viewedNotifications"
)

// NotificationLedger tracks which notifications have been seen and writes
// the unresolved snapshot consumed by the history view.
type NotificationLedger struct {
	mu          sync.Mutex
	alarms      []domain.Notification
	alerts      []domain.Notification
	viewed      map[int]struct{}
	resolvedIds map[int]struct{}
	kv          port.KeyValueStore
	metrics     metrics.Recorder
	logger      *zap.Logger
}

func NewNotificationLedger(kv port.KeyValueStore, resolvedIds []int, recorder metrics.Recorder, logger *zap.Logger) *NotificationLedger {
	resolved := make(map[int]struct{}, len(resolvedIds))
	for _, id := range resolvedIds {
		resolved[id] = struct{}{}
	}
	return &NotificationLedger{
		viewed:      map[int]struct{}{},
		resolvedIds: resolved,
		kv:          kv,
		metrics:     metrics.OrNoop(recorder),
		logger:      logger.With(zap.String("component", "notifications")),
	}
}

// SetNotifications replaces the current alarm and alert lists. Viewed ids
// are kept.
func (l *NotificationLedger) SetNotifications(alarms, alerts []domain.Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.alarms = slices.Clone(alarms)
	l.alerts = slices.Clone(alerts)
}

// Load pulls the notification lists from the source.
func (l *NotificationLedger) Load(ctx context.Context, source port.NotificationSource) error {
	alarms, alerts, err := source.GetNotifications(ctx)
	if err != nil {
		return err
	}
	l.SetNotifications(alarms, alerts)
	return nil
}

// HydrateViewed restores the viewed ids written by an earlier session.
func (l *NotificationLedger) HydrateViewed(ctx context.Context) {
	raw, err := l.kv.Get(ctx, VIEWED_IDS_KEY)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			l.logger.Warn("notifications@hydrate: could not read viewed ids", zap.Error(err))
		}
		return
	}
	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		l.logger.Error("notifications@hydrate: malformed viewed ids", zap.Error(err))
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		l.viewed[id] = struct{}{}
	}
}

// Visible returns the role filtered alarms followed by all alerts.
func (l *NotificationLedger) Visible(role domain.Role) []domain.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible(role)
}

func (l *NotificationLedger) visible(role domain.Role) []domain.Notification {
	alarms := l.alarms
	if !role.Privileged() && len(alarms) > 1 {
		alarms = alarms[:1]
	}
	all := make([]domain.Notification, 0, len(alarms)+len(l.alerts))
	all = append(all, alarms...)
	return append(all, l.alerts...)
}

func (l *NotificationLedger) VisibleCountFor(role domain.Role) int {
	return len(l.Visible(role))
}

func (l *NotificationLedger) UnviewedCount(role domain.Role) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for _, n := range l.visible(role) {
		if _, ok := l.viewed[n.Id]; !ok {
			count++
		}
	}
	l.metrics.SetUnviewedNotifications(string(role), count)
	return count
}

// MarkAllViewed adds every visible id to the viewed set. Earlier ids are
// never removed.
func (l *NotificationLedger) MarkAllViewed(ctx context.Context, role domain.Role) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.markAllViewed(role)
	l.persistViewed(ctx)
}

func (l *NotificationLedger) markAllViewed(role domain.Role) {
	for _, n := range l.visible(role) {
		l.viewed[n.Id] = struct{}{}
	}
}

func (l *NotificationLedger) IsViewed(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.viewed[id]
	return ok
}

func (l *NotificationLedger) ViewedIds() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewedIds()
}

func (l *NotificationLedger) viewedIds() []int {
	ids := make([]int, 0, len(l.viewed))
	for id := range l.viewed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Reset clears the viewed set.
func (l *NotificationLedger) Reset(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.viewed = map[int]struct{}{}
	l.persistViewed(ctx)
}

// BuildUnresolvedSnapshot returns a copy of the visible notifications with
// known resolved ids marked completed and everything else unresolved.
func (l *NotificationLedger) BuildUnresolvedSnapshot(role domain.Role) []domain.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buildUnresolvedSnapshot(role)
}

func (l *NotificationLedger) buildUnresolvedSnapshot(role domain.Role) []domain.Notification {
	visible := l.visible(role)
	snapshot := make([]domain.Notification, len(visible))
	for i, n := range visible {
		n.Status = domain.STATUS_UNRESOLVED
		if _, ok := l.resolvedIds[n.Id]; ok {
			n.Status = domain.STATUS_COMPLETED
		}
		snapshot[i] = n
	}
	return snapshot
}

// OpenPanel writes the snapshot and marks every visible notification as
// viewed in one step.
func (l *NotificationLedger) OpenPanel(ctx context.Context, role domain.Role) []domain.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := l.buildUnresolvedSnapshot(role)
	l.writeSnapshot(ctx, snapshot)
	l.markAllViewed(role)
	l.persistViewed(ctx)
	return snapshot
}

// OpenHistory writes the snapshot for the history view without touching the
// viewed set.
func (l *NotificationLedger) OpenHistory(ctx context.Context, role domain.Role) []domain.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := l.buildUnresolvedSnapshot(role)
	l.writeSnapshot(ctx, snapshot)
	return snapshot
}

// History reads the last persisted snapshot. A missing snapshot is empty.
func (l *NotificationLedger) History(ctx context.Context) ([]domain.Notification, error) {
	raw, err := l.kv.Get(ctx, UNRESOLVED_SNAPSHOT_KEY)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return []domain.Notification{}, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot []domain.Notification
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		l.logger.Error("notifications@history: malformed snapshot", zap.Error(err))
		return []domain.Notification{}, nil
	}
	return snapshot, nil
}

func (l *NotificationLedger) writeSnapshot(ctx context.Context, snapshot []domain.Notification) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		l.logger.Error("notifications@snapshot: marshal", zap.Error(err))
		return
	}
	if err := l.kv.Set(ctx, UNRESOLVED_SNAPSHOT_KEY, raw); err != nil {
		l.metrics.IncPersistFailure(UNRESOLVED_SNAPSHOT_KEY)
		l.logger.Error("notifications@snapshot: could not write snapshot", zap.Error(err))
		return
	}
	l.metrics.IncSnapshotWrite()
}

func (l *NotificationLedger) persistViewed(ctx context.Context) {
	raw, err := json.Marshal(l.viewedIds())
	if err != nil {
		return
	}
	if err := l.kv.Set(ctx, VIEWED_IDS_KEY, raw); err != nil {
		l.metrics.IncPersistFailure(VIEWED_IDS_KEY)
		l.logger.Error("notifications@viewed: could not write viewed ids", zap.Error(err))
	}
}
