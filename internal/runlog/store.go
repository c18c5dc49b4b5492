// Package runlog persists the append-only record of pipeline invocations.
package runlog

import (
	"context"
	"sort"

	"github.com/sells-group/autodoc/internal/model"
)

// Store is the run log: a durable, append-only sequence of log entries with
// bulk read-back. Entries are immutable; implementations only ever append.
// The pipeline is the sole logical writer, but Append must still be safe to
// call from concurrent invocations.
type Store interface {
	Append(ctx context.Context, entry model.LogEntry) error
	ReadAll(ctx context.Context) ([]model.LogEntry, error)
	Stats(ctx context.Context) (*model.Stats, error)
	Migrate(ctx context.Context) error
	Close() error
}

// computeStats derives summary statistics from the full entry sequence.
// Every backend routes Stats through this one helper so they agree on the
// numbers. Component totals count successful runs only; a failure entry's
// count records how far the run got, not work delivered.
func computeStats(entries []model.LogEntry) *model.Stats {
	s := &model.Stats{
		ByProject: []model.ProjectCount{},
		ByDay:     []model.DayCount{},
	}

	byProject := make(map[string]int)
	byDay := make(map[string]int)

	for _, e := range entries {
		s.TotalReports++
		if e.Status == model.RunStatusSuccess {
			s.Succeeded++
			s.TotalComponents += e.ComponentCount
		} else {
			s.Failed++
		}
		byProject[e.Project]++
		byDay[e.GeneratedAt.UTC().Format("2006-01-02")]++
	}

	if s.TotalReports > 0 {
		s.SuccessRate = float64(s.Succeeded) / float64(s.TotalReports)
	}

	for p, n := range byProject {
		s.ByProject = append(s.ByProject, model.ProjectCount{Project: p, Reports: n})
	}
	sort.Slice(s.ByProject, func(i, j int) bool {
		if s.ByProject[i].Reports != s.ByProject[j].Reports {
			return s.ByProject[i].Reports > s.ByProject[j].Reports
		}
		return s.ByProject[i].Project < s.ByProject[j].Project
	})

	for d, n := range byDay {
		s.ByDay = append(s.ByDay, model.DayCount{Day: d, Reports: n})
	}
	sort.Slice(s.ByDay, func(i, j int) bool { return s.ByDay[i].Day < s.ByDay[j].Day })

	return s
}
