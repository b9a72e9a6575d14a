package domain

import (
	"sort"
	"strings"
)

// StatusFilter selects tasks by completion.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

// ParseStatus never fails: unknown values mean "all".
func ParseStatus(s string) StatusFilter {
	switch StatusFilter(s) {
	case StatusActive:
		return StatusActive
	case StatusCompleted:
		return StatusCompleted
	default:
		return StatusAll
	}
}

// Match reports whether t passes the filter.
func (f StatusFilter) Match(t Task) bool {
	switch f {
	case StatusActive:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	default:
		return true
	}
}

// SortKey selects list ordering.
type SortKey string

const (
	SortDueDate   SortKey = "dueDate"
	SortTitle     SortKey = "title"
	SortCreatedAt SortKey = "createdAt"
	SortOrder     SortKey = "sortOrder"
)

// ParseSort never fails: unknown values fall back to the due date ordering.
func ParseSort(s string) SortKey {
	switch SortKey(s) {
	case SortTitle:
		return SortTitle
	case SortCreatedAt:
		return SortCreatedAt
	case SortOrder:
		return SortOrder
	default:
		return SortDueDate
	}
}

// TaskQuery is the list contract shared by every store and by the client view.
type TaskQuery struct {
	Status StatusFilter
	Sort   SortKey
}

// ParseQuery builds a query from raw ?status=&sort= values.
func ParseQuery(status, sort string) TaskQuery {
	return TaskQuery{Status: ParseStatus(status), Sort: ParseSort(sort)}
}

// ApplyQuery filters first, then sorts the remaining subset. The input slice is not modified.
//
// Orderings (id is the final tie-break everywhere so results are deterministic):
//   - dueDate: non-null dates ascending, nulls last, then createdAt ascending
//   - title: byte order ascending
//   - createdAt: newest first
//   - sortOrder: ascending, then createdAt ascending
func ApplyQuery(tasks []Task, q TaskQuery) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if q.Status.Match(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i], out[j], q.Sort)
	})
	return out
}

// Less is the strict ordering used by ApplyQuery.
func Less(a, b Task, key SortKey) bool {
	switch key {
	case SortTitle:
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	case SortCreatedAt:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	case SortOrder:
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return createdBefore(a, b)
	default:
		switch {
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && b.DueDate != nil && *a.DueDate != *b.DueDate:
			// YYYY-MM-DD compares chronologically as a string
			return *a.DueDate < *b.DueDate
		}
		return createdBefore(a, b)
	}
}

func createdBefore(a, b Task) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
