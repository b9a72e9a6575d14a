package client

import (
	"todo_webapp/internal/domain"
)

// Phase is where a single task's last mutation stands.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// FetchToken identifies one list request. Only the newest one may land.
type FetchToken uint64

type pendingOp struct {
	task     domain.Task
	deleting bool
}

type settleMark struct {
	fetch   FetchToken
	deleted bool
}

// State is the client's view of the task list: last-known-good records from
// the server plus a pending overlay per task id. It is not safe for concurrent
// use; the UI drives it from its single update loop.
type State struct {
	base    map[int64]domain.Task
	pending map[int64]pendingOp
	failed  map[int64]error
	settled map[int64]settleMark

	query   domain.TaskQuery
	loading bool
	err     error

	fetchSeq FetchToken
	tempSeq  int64
}

func NewState(q domain.TaskQuery) *State {
	return &State{
		base:    make(map[int64]domain.Task),
		pending: make(map[int64]pendingOp),
		failed:  make(map[int64]error),
		settled: make(map[int64]settleMark),
		query:   q,
	}
}

func (s *State) Query() domain.TaskQuery { return s.query }

// SetQuery changes the local filter and sort. No refetch is needed because
// View applies the same ordering the server does.
func (s *State) SetQuery(q domain.TaskQuery) { s.query = q }

func (s *State) Loading() bool { return s.loading }

// Err is the most recent failure, kept until ClearErr.
func (s *State) Err() error { return s.err }

func (s *State) ClearErr() { s.err = nil }

// BeginFetch marks a list request in flight and returns its token.
func (s *State) BeginFetch() FetchToken {
	s.fetchSeq++
	s.loading = true
	return s.fetchSeq
}

// ResolveFetch replaces the base records with tasks. It returns false and
// changes nothing when a newer fetch has been issued since token. Records
// settled by mutations after this fetch began win over the fetched copy.
func (s *State) ResolveFetch(token FetchToken, tasks []domain.Task) bool {
	if token != s.fetchSeq {
		return false
	}

	next := make(map[int64]domain.Task, len(tasks))
	for _, t := range tasks {
		next[t.ID] = t
	}
	for id, mark := range s.settled {
		if mark.fetch < token {
			continue
		}
		if mark.deleted {
			delete(next, id)
		} else if t, ok := s.base[id]; ok {
			next[id] = t
		}
	}

	s.base = next
	s.settled = make(map[int64]settleMark)
	s.loading = false
	s.err = nil
	return true
}

// FailFetch records err for the newest fetch. Existing tasks stay visible.
func (s *State) FailFetch(token FetchToken, err error) bool {
	if token != s.fetchSeq {
		return false
	}
	s.loading = false
	s.err = err
	return true
}

// BeginCreate shows t before the server has answered. The returned temporary
// id (always negative) is what Settle or Fail must be called with.
func (s *State) BeginCreate(t domain.Task) int64 {
	s.tempSeq--
	t.ID = s.tempSeq
	s.pending[t.ID] = pendingOp{task: t}
	return t.ID
}

// BeginMutation overlays the optimistic record for id.
func (s *State) BeginMutation(id int64, optimistic domain.Task) {
	optimistic.ID = id
	delete(s.failed, id)
	s.pending[id] = pendingOp{task: optimistic}
}

// BeginDelete hides id until the delete settles or fails.
func (s *State) BeginDelete(id int64) {
	delete(s.failed, id)
	s.pending[id] = pendingOp{deleting: true}
}

// Settle reconciles id with the record the server returned. For creates, id
// is the temporary id and server carries the real one.
func (s *State) Settle(id int64, server domain.Task) {
	delete(s.pending, id)
	delete(s.failed, id)
	s.base[server.ID] = server
	s.settled[server.ID] = settleMark{fetch: s.fetchSeq}
}

// SettleDelete drops id for good.
func (s *State) SettleDelete(id int64) {
	delete(s.pending, id)
	delete(s.failed, id)
	delete(s.base, id)
	s.settled[id] = settleMark{fetch: s.fetchSeq, deleted: true}
}

// Fail discards the overlay for id and keeps the last-known-good record.
func (s *State) Fail(id int64, err error) {
	delete(s.pending, id)
	if id > 0 {
		s.failed[id] = err
	}
	s.err = err
}

// Phase reports the mutation state of id.
func (s *State) Phase(id int64) Phase {
	if _, ok := s.pending[id]; ok {
		return PhaseSubmitting
	}
	if _, ok := s.failed[id]; ok {
		return PhaseFailed
	}
	return PhaseIdle
}

// Task returns the record as currently displayed.
func (s *State) Task(id int64) (domain.Task, bool) {
	if op, ok := s.pending[id]; ok {
		if op.deleting {
			return domain.Task{}, false
		}
		return op.task, true
	}
	t, ok := s.base[id]
	return t, ok
}

// merged is base with every overlay applied, unfiltered.
func (s *State) merged() []domain.Task {
	out := make([]domain.Task, 0, len(s.base)+len(s.pending))
	for id, t := range s.base {
		if op, ok := s.pending[id]; ok {
			if op.deleting {
				continue
			}
			t = op.task
		}
		out = append(out, t)
	}
	for id, op := range s.pending {
		if _, ok := s.base[id]; !ok && !op.deleting {
			out = append(out, op.task)
		}
	}
	return out
}

// View is what the list shows: overlays applied, then filtered and sorted
// exactly as GET /api/tasks would.
func (s *State) View() []domain.Task {
	return domain.ApplyQuery(s.merged(), s.query)
}

// Select is View with a different status filter, keeping the current sort.
func (s *State) Select(status domain.StatusFilter) []domain.Task {
	return domain.ApplyQuery(s.merged(), domain.TaskQuery{Status: status, Sort: s.query.Sort})
}

// Counts per status tab.
type Counts struct {
	All       int
	Active    int
	Completed int
}

func (s *State) Counts() Counts {
	var c Counts
	for _, t := range s.merged() {
		c.All++
		if t.Completed {
			c.Completed++
		} else {
			c.Active++
		}
	}
	return c
}
