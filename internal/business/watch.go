package business

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/taskmanager-client/internal/config"
	"github.com/openkcm/taskmanager-client/pkg/apiclient"
)

type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeStatus  ChangeKind = "status"
	ChangeUpdated ChangeKind = "updated"
)

type TaskChange struct {
	Kind ChangeKind     `json:"kind" yaml:"kind"`
	Task apiclient.Task `json:"task" yaml:"task"`
	// PreviousStatus is set for ChangeStatus.
	PreviousStatus apiclient.TaskStatus `json:"previous_status,omitempty" yaml:"previous_status,omitempty"`
}

// ReportFunc receives the changes found by one poll. Returning an error stops
// the watch.
type ReportFunc func(context.Context, []TaskChange) error

// WatchTasksMain returns the business function of the watch command.
func WatchTasksMain(status apiclient.TaskStatus, report ReportFunc) func(context.Context, *config.Config) error {
	return func(ctx context.Context, cfg *config.Config) error {
		return WithClient(ctx, cfg, func(ctx context.Context, client *apiclient.Client) error {
			slogctx.Info(ctx, "Starting task watch", "interval", cfg.Watch.Interval, "status", status)
			return WatchTasks(ctx, client, cfg.Watch.Interval, status, report)
		})
	}
}

// WatchTasks polls the task list every interval and reports what changed
// since the previous poll. The first poll reports every task as added. Poll
// failures are logged and retried on the next tick, except for a session that
// can no longer be refreshed.
func WatchTasks(ctx context.Context, client *apiclient.Client, interval time.Duration, status apiclient.TaskStatus, report ReportFunc) error {
	if interval <= 0 {
		return fmt.Errorf("invalid watch interval %s", interval)
	}

	var previous []apiclient.Task
	c := time.Tick(interval)
	for {
		tasks, err := client.ListTasks(ctx, status)
		switch {
		case errors.Is(err, apiclient.ErrNoRefreshToken), errors.Is(err, apiclient.ErrRefreshFailed):
			return fmt.Errorf("polling tasks: %w", err)
		case err != nil:
			slogctx.Error(ctx, "Failed to poll tasks", "error", err)
		default:
			if changes := DiffTasks(previous, tasks); len(changes) > 0 {
				if err := report(ctx, changes); err != nil {
					return fmt.Errorf("reporting task changes: %w", err)
				}
			}
			previous = tasks
		}

		select {
		case <-c:
			continue
		case <-ctx.Done():
			return nil
		}
	}
}

// DiffTasks compares two snapshots of the task list. Added and changed tasks
// follow the order of next; removed tasks are sorted by ID.
func DiffTasks(prev, next []apiclient.Task) []TaskChange {
	before := make(map[int64]apiclient.Task, len(prev))
	for _, t := range prev {
		before[t.ID] = t
	}

	var changes []TaskChange
	seen := make(map[int64]bool, len(next))
	for _, t := range next {
		seen[t.ID] = true

		old, ok := before[t.ID]
		switch {
		case !ok:
			changes = append(changes, TaskChange{Kind: ChangeAdded, Task: t})
		case old.Status != t.Status:
			changes = append(changes, TaskChange{Kind: ChangeStatus, Task: t, PreviousStatus: old.Status})
		case taskModified(old, t):
			changes = append(changes, TaskChange{Kind: ChangeUpdated, Task: t})
		}
	}

	var removed []apiclient.Task
	for _, t := range prev {
		if !seen[t.ID] {
			removed = append(removed, t)
		}
	}
	slices.SortFunc(removed, func(a, b apiclient.Task) int {
		return cmp.Compare(a.ID, b.ID)
	})
	for _, t := range removed {
		changes = append(changes, TaskChange{Kind: ChangeRemoved, Task: t})
	}

	return changes
}

func taskModified(a, b apiclient.Task) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt.Time) {
		return true
	}

	return a.Title != b.Title ||
		a.Description != b.Description ||
		a.Priority != b.Priority ||
		a.DueDate != b.DueDate ||
		!equalID(a.AssignedTo, b.AssignedTo)
}

func equalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
