package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/elections/internal/core/domain"
	"github.com/vncsmyrnk/elections/internal/core/ports"
)

// memoryStore is a single-process stand-in for the postgres adapters. The
// per-election mutex plays the role of SELECT ... FOR UPDATE.
type memoryStore struct {
	mu        sync.Mutex
	locks     map[uuid.UUID]*sync.Mutex
	elections map[uuid.UUID]*domain.Election
	ballots   []domain.Ballot

	insertErr error
	lockErr   error
}

func newMemoryStore(elections ...*domain.Election) *memoryStore {
	m := &memoryStore{
		locks:     make(map[uuid.UUID]*sync.Mutex),
		elections: make(map[uuid.UUID]*domain.Election),
	}
	for _, e := range elections {
		m.elections[e.ID] = e
	}
	return m
}

func (m *memoryStore) lockFor(id uuid.UUID) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

func (m *memoryStore) snapshot(id uuid.UUID) *domain.Election {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.elections[id]
	if !ok {
		return nil
	}
	cp := *e
	cp.Answers = append([]domain.Answer(nil), e.Answers...)
	return &cp
}

func (m *memoryStore) InElectionTx(ctx context.Context, electionID uuid.UUID, fn func(ctx context.Context, tx ports.ElectionTx) error) error {
	if m.lockErr != nil {
		return m.lockErr
	}
	lock := m.lockFor(electionID)
	lock.Lock()
	defer lock.Unlock()

	tx := &memoryTx{store: m, election: m.snapshot(electionID), replace: map[string]string{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.ballots {
		b := &m.ballots[i]
		if b.ElectionID != electionID {
			continue
		}
		if to, ok := tx.replace[b.MemberUID]; ok {
			b.MemberUID = to
		}
	}
	for _, b := range tx.inserts {
		for _, existing := range m.ballots {
			if existing.ElectionID == b.ElectionID && existing.MemberUID == b.MemberUID && existing.AnswerID == b.AnswerID {
				return domain.Conflict(domain.ReasonAlreadyVoted)
			}
		}
	}
	m.ballots = append(m.ballots, tx.inserts...)
	return nil
}

func (m *memoryStore) Election(_ context.Context, electionID uuid.UUID) (*domain.Election, error) {
	return m.snapshot(electionID), nil
}

func (m *memoryStore) HasVoted(_ context.Context, electionID uuid.UUID, identity string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.ballots {
		if b.ElectionID == electionID && b.MemberUID == identity {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) ballotsFor(electionID uuid.UUID) []domain.Ballot {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Ballot
	for _, b := range m.ballots {
		if b.ElectionID == electionID {
			out = append(out, b)
		}
	}
	return out
}

func (m *memoryStore) Save(_ context.Context, e *domain.Election) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elections[e.ID] = e
	return nil
}

func (m *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Election, error) {
	e := m.snapshot(id)
	if e == nil {
		return nil, domain.NotFound(domain.ReasonElectionNotFound)
	}
	return e, nil
}

func (m *memoryStore) List(_ context.Context, includeArchived bool) ([]*domain.Election, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Election
	for _, e := range m.elections {
		if e.Status == domain.StatusArchived && !includeArchived {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *memoryStore) Update(ctx context.Context, id uuid.UUID, fn func(e *domain.Election) error) (*domain.Election, error) {
	var updated *domain.Election
	err := m.InElectionTx(ctx, id, func(ctx context.Context, tx ports.ElectionTx) error {
		e := tx.Election()
		if e == nil {
			return domain.NotFound(domain.ReasonElectionNotFound)
		}
		if err := fn(e); err != nil {
			return err
		}
		e.UpdatedAt = time.Now().UTC()
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.elections[id] = updated
	m.mu.Unlock()
	return updated, nil
}

func (m *memoryStore) Tally(_ context.Context, electionID uuid.UUID) (domain.Tally, error) {
	t := domain.Tally{Counts: map[string]int64{}}
	voters := map[string]struct{}{}
	for _, b := range m.ballotsFor(electionID) {
		t.Counts[b.AnswerID]++
		voters[b.MemberUID] = struct{}{}
	}
	t.TotalVoters = int64(len(voters))
	return t, nil
}

type memoryTx struct {
	store    *memoryStore
	election *domain.Election
	inserts  []domain.Ballot
	replace  map[string]string
}

func (tx *memoryTx) Election() *domain.Election {
	return tx.election
}

func (tx *memoryTx) HasVoted(ctx context.Context, identity string) (bool, error) {
	for _, b := range tx.inserts {
		if b.MemberUID == identity {
			return true, nil
		}
	}
	return tx.store.HasVoted(ctx, tx.election.ID, identity)
}

func (tx *memoryTx) InsertBallots(_ context.Context, ballots []domain.Ballot) error {
	if tx.store.insertErr != nil {
		return tx.store.insertErr
	}
	tx.inserts = append(tx.inserts, ballots...)
	return nil
}

func (tx *memoryTx) MemberUIDs(_ context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	var uids []string
	for _, b := range tx.store.ballotsFor(tx.election.ID) {
		if _, ok := seen[b.MemberUID]; ok {
			continue
		}
		seen[b.MemberUID] = struct{}{}
		uids = append(uids, b.MemberUID)
	}
	return uids, nil
}

func (tx *memoryTx) ReplaceMemberUID(_ context.Context, from, to string) (int64, error) {
	var n int64
	for _, b := range tx.store.ballotsFor(tx.election.ID) {
		if b.MemberUID == from {
			n++
		}
	}
	tx.replace[from] = to
	return n, nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []ports.AuditEvent
}

func (a *recordingAudit) Record(_ context.Context, e ports.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action+":"+e.Outcome)
	}
	return out
}
