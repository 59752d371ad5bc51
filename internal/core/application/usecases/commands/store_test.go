package commands_test

import (
	"context"
	"maps"
	"slices"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/contractor"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/queue"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/require"
)

// memStore is a single-threaded stand-in for the database. Aggregates are stored as
// clones so that a rolled back unit of work leaves no trace.
type memStore struct {
	t *testing.T

	jobs        map[kernel.UUID]*job.Job
	history     []job.HistoryEntry
	entries     map[kernel.UUID]*queue.Entry
	bids        map[kernel.UUID]*bid.Bid
	bidOrder    []kernel.UUID
	contractors map[kernel.UUID]*contractor.Contractor
	timeOff     map[kernel.UUID]bool
	overrides   map[kernel.UUID]bool

	commits int
}

func newMemStore(t *testing.T) *memStore {
	t.Helper()
	return &memStore{
		t:           t,
		jobs:        make(map[kernel.UUID]*job.Job),
		entries:     make(map[kernel.UUID]*queue.Entry),
		bids:        make(map[kernel.UUID]*bid.Bid),
		contractors: make(map[kernel.UUID]*contractor.Contractor),
		timeOff:     make(map[kernel.UUID]bool),
		overrides:   make(map[kernel.UUID]bool),
	}
}

type memSnapshot struct {
	jobs        map[kernel.UUID]*job.Job
	history     []job.HistoryEntry
	entries     map[kernel.UUID]*queue.Entry
	bids        map[kernel.UUID]*bid.Bid
	bidOrder    []kernel.UUID
	contractors map[kernel.UUID]*contractor.Contractor
}

func (s *memStore) snapshot() memSnapshot {
	return memSnapshot{
		jobs:        maps.Clone(s.jobs),
		history:     slices.Clone(s.history),
		entries:     maps.Clone(s.entries),
		bids:        maps.Clone(s.bids),
		bidOrder:    slices.Clone(s.bidOrder),
		contractors: maps.Clone(s.contractors),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.jobs = snap.jobs
	s.history = snap.history
	s.entries = snap.entries
	s.bids = snap.bids
	s.bidOrder = snap.bidOrder
	s.contractors = snap.contractors
}

func (s *memStore) Create() commands.UoW {
	return &memUoW{store: s}
}

// jobUoWFactory narrows the store for handlers that only touch jobs.
type jobUoWFactory struct{ store *memStore }

func (f jobUoWFactory) Create() commands.JobUoW {
	return &memUoW{store: f.store}
}

// Seeding and inspection helpers.

func (s *memStore) addContractor(name string, tier contractor.Tier, lastAssignedAt *time.Time) *contractor.Contractor {
	s.t.Helper()
	loc, err := kernel.NewGeoPoint(40.0, -75.0)
	require.NoError(s.t, err)
	c, err := contractor.RestoreContractor(kernel.NewUUID(), name, tier, true, 50, &loc, lastAssignedAt, nil)
	require.NoError(s.t, err)
	s.contractors[c.ID()] = cloneContractor(s.t, c)
	return c
}

func (s *memStore) addJob(createdAt time.Time) *job.Job {
	s.t.Helper()
	loc, err := kernel.NewGeoPoint(40.01, -75.01)
	require.NoError(s.t, err)
	j, err := job.NewJob(kernel.NewUUID(), kernel.NewUUID(), &loc, createdAt)
	require.NoError(s.t, err)
	s.putJob(j)
	return j
}

func (s *memStore) addBiddingJob(createdAt, deadline time.Time, reserve *int64, policy job.AutoAcceptPolicy) *job.Job {
	s.t.Helper()
	j, err := job.NewJob(kernel.NewUUID(), kernel.NewUUID(), nil, createdAt)
	require.NoError(s.t, err)
	var reservePrice *kernel.Money
	if reserve != nil {
		m, err := kernel.NewMoney(*reserve)
		require.NoError(s.t, err)
		reservePrice = &m
	}
	require.NoError(s.t, j.OpenBidding(deadline, reservePrice, policy, createdAt))
	s.putJob(j)
	return j
}

func (s *memStore) putJob(j *job.Job) {
	s.history = append(s.history, j.PendingHistory()...)
	j.ClearPendingHistory()
	s.jobs[j.ID()] = cloneJob(s.t, j)
}

func (s *memStore) job(id kernel.UUID) *job.Job {
	s.t.Helper()
	j, ok := s.jobs[id]
	require.True(s.t, ok, "job %s not stored", id)
	return cloneJob(s.t, j)
}

func (s *memStore) contractor(id kernel.UUID) *contractor.Contractor {
	s.t.Helper()
	c, ok := s.contractors[id]
	require.True(s.t, ok, "contractor %s not stored", id)
	return cloneContractor(s.t, c)
}

func (s *memStore) bid(id kernel.UUID) *bid.Bid {
	s.t.Helper()
	b, ok := s.bids[id]
	require.True(s.t, ok, "bid %s not stored", id)
	return cloneBid(s.t, b)
}

// queueOf returns the active entries of the contractor ordered by position.
func (s *memStore) queueOf(contractorID kernel.UUID) []*queue.Entry {
	var active []*queue.Entry
	for _, e := range s.entries {
		if e.ContractorID().IsEqual(contractorID) && e.Status().IsActive() {
			active = append(active, e)
		}
	}
	slices.SortFunc(active, func(a, b *queue.Entry) int { return a.Position() - b.Position() })
	return active
}

func (s *memStore) entriesOfJob(jobID kernel.UUID) []*queue.Entry {
	var out []*queue.Entry
	for _, e := range s.entries {
		if e.JobID().IsEqual(jobID) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b *queue.Entry) int { return a.CreatedAt().Compare(b.CreatedAt()) })
	return out
}

func (s *memStore) historyOf(jobID kernel.UUID) []job.HistoryEntry {
	var out []job.HistoryEntry
	for _, h := range s.history {
		if h.JobID().IsEqual(jobID) {
			out = append(out, h)
		}
	}
	return out
}

// Clones rebuild aggregates through their restore constructors.

func cloneJob(t *testing.T, j *job.Job) *job.Job {
	t.Helper()
	c, err := job.Restore(job.RestoreParams{
		ID:                      j.ID(),
		CustomerID:              j.CustomerID(),
		Status:                  j.Status(),
		ContractorID:            j.ContractorID(),
		AssignmentAttempts:      j.AssignmentAttempts(),
		LastAssignmentAttemptAt: j.LastAssignmentAttemptAt(),
		Location:                j.Location(),
		AllowBidding:            j.AllowBidding(),
		BiddingDeadline:         j.BiddingDeadline(),
		ReservePrice:            j.ReservePrice(),
		AutoAcceptPolicy:        j.AutoAcceptPolicy(),
		WinningBidID:            j.WinningBidID(),
		AgreedPrice:             j.AgreedPrice(),
		CreatedAt:               j.CreatedAt(),
	})
	require.NoError(t, err)
	return c
}

func cloneEntry(t *testing.T, e *queue.Entry) *queue.Entry {
	t.Helper()
	c, err := queue.RestoreEntry(e.ID(), e.ContractorID(), e.JobID(), e.Position(), e.Status(), e.Note(),
		e.CreatedAt(), e.UpdatedAt())
	require.NoError(t, err)
	return c
}

func cloneBid(t *testing.T, b *bid.Bid) *bid.Bid {
	t.Helper()
	c, err := bid.Restore(bid.RestoreParams{
		ID:                b.ID(),
		JobID:             b.JobID(),
		ContractorID:      b.ContractorID(),
		Amount:            b.Amount(),
		EstimatedDuration: b.EstimatedDuration(),
		ContractorRating:  b.ContractorRating(),
		Message:           b.Message(),
		Status:            b.Status(),
		Ranking:           b.Ranking(),
		IsCounterOffer:    b.IsCounterOffer(),
		OriginalBidID:     b.OriginalBidID(),
		CreatedAt:         b.CreatedAt(),
		UpdatedAt:         b.UpdatedAt(),
	})
	require.NoError(t, err)
	return c
}

func cloneContractor(t *testing.T, c *contractor.Contractor) *contractor.Contractor {
	t.Helper()
	cl, err := contractor.RestoreContractor(c.ID(), c.Name(), c.Tier(), c.IsAvailable(), c.ServiceRadiusMiles(),
		c.Location(), c.LastAssignedAt(), c.Rating())
	require.NoError(t, err)
	return cl
}

// memUoW is one transaction over memStore.
type memUoW struct {
	store     *memStore
	snap      memSnapshot
	inTx      bool
	committed bool
}

func (u *memUoW) Begin(context.Context) error {
	u.snap = u.store.snapshot()
	u.inTx = true
	return nil
}

func (u *memUoW) Commit(context.Context) error {
	u.inTx = false
	u.committed = true
	u.store.commits++
	return nil
}

func (u *memUoW) Rollback(context.Context) error {
	if u.inTx {
		u.store.restore(u.snap)
		u.inTx = false
	}
	return nil
}

func (u *memUoW) JobRepository() ports.JobRepository               { return memJobRepo{u.store} }
func (u *memUoW) QueueRepository() ports.QueueRepository           { return memQueueRepo{u.store} }
func (u *memUoW) BidRepository() ports.BidRepository               { return memBidRepo{u.store} }
func (u *memUoW) ContractorRepository() ports.ContractorRepository { return memContractorRepo{u.store} }
func (u *memUoW) AvailabilityCalendar() ports.AvailabilityCalendar { return memCalendar{u.store} }

type memJobRepo struct{ s *memStore }

func (r memJobRepo) Add(_ context.Context, j *job.Job) error {
	if _, ok := r.s.jobs[j.ID()]; ok {
		return errs.NewInvalidStateError("job", "duplicate id")
	}
	r.s.putJob(j)
	return nil
}

func (r memJobRepo) Update(_ context.Context, j *job.Job) error {
	if _, ok := r.s.jobs[j.ID()]; !ok {
		return errs.NewObjectNotFoundError("jobId", j.ID())
	}
	r.s.putJob(j)
	return nil
}

func (r memJobRepo) Get(_ context.Context, id kernel.UUID) (*job.Job, error) {
	j, ok := r.s.jobs[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("jobId", id)
	}
	return cloneJob(r.s.t, j), nil
}

func (r memJobRepo) GetForUpdate(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	return r.Get(ctx, id)
}

func (r memJobRepo) ListStaleIDs(_ context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	return r.list(limit, func(j *job.Job) bool { return j.IsStale(cutoff) }, func(j *job.Job) time.Time {
		return *j.LastAssignmentAttemptAt()
	}), nil
}

func (r memJobRepo) LockIfStale(_ context.Context, id kernel.UUID, cutoff time.Time) (*job.Job, error) {
	j, ok := r.s.jobs[id]
	if !ok || !j.IsStale(cutoff) {
		return nil, errs.NewObjectNotFoundError("jobId", id)
	}
	return cloneJob(r.s.t, j), nil
}

func (r memJobRepo) ListUnassignedIDs(_ context.Context, limit int) ([]kernel.UUID, error) {
	return r.list(limit, waitingForContractor, (*job.Job).CreatedAt), nil
}

func (r memJobRepo) LockIfUnassigned(_ context.Context, id kernel.UUID) (*job.Job, error) {
	j, ok := r.s.jobs[id]
	if !ok || !waitingForContractor(j) {
		return nil, errs.NewObjectNotFoundError("jobId", id)
	}
	return cloneJob(r.s.t, j), nil
}

func (r memJobRepo) ListExpiredBiddingIDs(_ context.Context, now time.Time, limit int) ([]kernel.UUID, error) {
	return r.list(limit, func(j *job.Job) bool {
		return j.AutoAcceptPolicy() == job.AutoAcceptLowest && j.BiddingExpired(now)
	}, func(j *job.Job) time.Time { return *j.BiddingDeadline() }), nil
}

func (r memJobRepo) list(limit int, match func(*job.Job) bool, key func(*job.Job) time.Time) []kernel.UUID {
	var found []*job.Job
	for _, j := range r.s.jobs {
		if match(j) {
			found = append(found, j)
		}
	}
	slices.SortFunc(found, func(a, b *job.Job) int { return key(a).Compare(key(b)) })
	ids := make([]kernel.UUID, 0, len(found))
	for _, j := range found {
		if len(ids) == limit {
			break
		}
		ids = append(ids, j.ID())
	}
	return ids
}

func waitingForContractor(j *job.Job) bool {
	return j.Status() == job.New && j.ContractorID() == nil && !j.AllowBidding()
}

type memQueueRepo struct{ s *memStore }

func (r memQueueRepo) Load(_ context.Context, contractorID kernel.UUID) (*queue.Queue, error) {
	active := r.s.queueOf(contractorID)
	clones := make([]*queue.Entry, 0, len(active))
	for _, e := range active {
		clones = append(clones, cloneEntry(r.s.t, e))
	}
	return queue.New(contractorID, clones)
}

func (r memQueueRepo) Save(_ context.Context, q *queue.Queue) error {
	upserts, deletes := q.Changes()
	for _, id := range deletes {
		delete(r.s.entries, id)
	}
	for _, e := range upserts {
		r.s.entries[e.ID()] = cloneEntry(r.s.t, e)
	}
	q.ClearChanges()
	return nil
}

func (r memQueueRepo) GetEntry(_ context.Context, id kernel.UUID) (*queue.Entry, error) {
	e, ok := r.s.entries[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("queueEntryId", id)
	}
	return cloneEntry(r.s.t, e), nil
}

func (r memQueueRepo) FindLatestByJob(_ context.Context, jobID kernel.UUID) (*queue.Entry, error) {
	all := r.s.entriesOfJob(jobID)
	if len(all) == 0 {
		return nil, errs.NewObjectNotFoundError("jobId", jobID)
	}
	return cloneEntry(r.s.t, all[len(all)-1]), nil
}

func (r memQueueRepo) CountActive(_ context.Context, contractorIDs []kernel.UUID) (map[kernel.UUID]int, error) {
	counts := make(map[kernel.UUID]int)
	for _, id := range contractorIDs {
		if n := len(r.s.queueOf(id)); n > 0 {
			counts[id] = n
		}
	}
	return counts, nil
}

type memBidRepo struct{ s *memStore }

func (r memBidRepo) Add(_ context.Context, b *bid.Bid) error {
	r.s.bids[b.ID()] = cloneBid(r.s.t, b)
	r.s.bidOrder = append(r.s.bidOrder, b.ID())
	return nil
}

func (r memBidRepo) Update(_ context.Context, b *bid.Bid) error {
	if _, ok := r.s.bids[b.ID()]; !ok {
		return errs.NewObjectNotFoundError("bidId", b.ID())
	}
	r.s.bids[b.ID()] = cloneBid(r.s.t, b)
	return nil
}

func (r memBidRepo) Get(_ context.Context, id kernel.UUID) (*bid.Bid, error) {
	b, ok := r.s.bids[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("bidId", id)
	}
	return cloneBid(r.s.t, b), nil
}

func (r memBidRepo) ListByJob(_ context.Context, jobID kernel.UUID) ([]*bid.Bid, error) {
	var out []*bid.Bid
	for _, id := range r.s.bidOrder {
		if b := r.s.bids[id]; b.JobID().IsEqual(jobID) {
			out = append(out, cloneBid(r.s.t, b))
		}
	}
	return out, nil
}

type memContractorRepo struct{ s *memStore }

func (r memContractorRepo) Add(_ context.Context, c *contractor.Contractor) error {
	r.s.contractors[c.ID()] = cloneContractor(r.s.t, c)
	return nil
}

func (r memContractorRepo) Update(_ context.Context, c *contractor.Contractor) error {
	if _, ok := r.s.contractors[c.ID()]; !ok {
		return errs.NewObjectNotFoundError("contractorId", c.ID())
	}
	r.s.contractors[c.ID()] = cloneContractor(r.s.t, c)
	return nil
}

func (r memContractorRepo) Get(_ context.Context, id kernel.UUID) (*contractor.Contractor, error) {
	c, ok := r.s.contractors[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("contractorId", id)
	}
	return cloneContractor(r.s.t, c), nil
}

func (r memContractorRepo) GetForUpdate(ctx context.Context, id kernel.UUID) (*contractor.Contractor, error) {
	return r.Get(ctx, id)
}

func (r memContractorRepo) ListAvailable(context.Context) ([]*contractor.Contractor, error) {
	var out []*contractor.Contractor
	for _, c := range r.s.contractors {
		if c.IsAvailable() {
			out = append(out, cloneContractor(r.s.t, c))
		}
	}
	slices.SortFunc(out, func(a, b *contractor.Contractor) int { return a.ID().Compare(b.ID()) })
	return out, nil
}

type memCalendar struct{ s *memStore }

func (c memCalendar) HasApprovedTimeOff(_ context.Context, id kernel.UUID, _ time.Time) (bool, error) {
	return c.s.timeOff[id], nil
}

func (c memCalendar) HasAvailabilityOverride(_ context.Context, id kernel.UUID, _ time.Time) (bool, error) {
	return c.s.overrides[id], nil
}

// fakeClock is moved by the tests.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// recordingNotifier keeps every delivered notification.
type recordingNotifier struct {
	sent []ports.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg ports.Notification) {
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) events(recipient kernel.UUID) []string {
	var out []string
	for _, msg := range n.sent {
		if msg.RecipientID.IsEqual(recipient) {
			out = append(out, msg.Event)
		}
	}
	return out
}

var t0 = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }
