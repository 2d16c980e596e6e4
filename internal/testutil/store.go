package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/recycle-disposals/internal/model"
	"github.com/nurpe/recycle-disposals/internal/repository"
)

type txMarker struct{}

// Store is an in-memory stand-in for the postgres repositories. Transactions
// are serialized and roll back every change when fn fails; calls outside a
// transaction are atomic on their own.
type Store struct {
	txMu sync.Mutex
	data state
	seq  int64

	failMu   sync.Mutex
	failures map[string][]error
}

type state struct {
	disposals    map[uuid.UUID]model.Disposal
	companies    map[uuid.UUID]model.Company
	workers      map[uuid.UUID]model.Worker
	materials    map[uuid.UUID]model.Material
	achievements []model.Achievement
	order        map[uuid.UUID]int64
}

func NewStore() *Store {
	return &Store{
		data: state{
			disposals: map[uuid.UUID]model.Disposal{},
			companies: map[uuid.UUID]model.Company{},
			workers:   map[uuid.UUID]model.Worker{},
			materials: map[uuid.UUID]model.Material{},
			order:     map[uuid.UUID]int64{},
		},
		failures: map[string][]error{},
	}
}

// FailOn makes the next call to method return err.
func (s *Store) FailOn(method string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failures[method] = append(s.failures[method], err)
}

func (s *Store) fail(ctx context.Context, method string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.failMu.Lock()
	defer s.failMu.Unlock()
	queue := s.failures[method]
	if len(queue) == 0 {
		return nil
	}
	s.failures[method] = queue[1:]
	return queue[0]
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txMarker{}).(bool)
	return ok
}

func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	saved := s.data.clone()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		s.data = saved
		return err
	}
	return nil
}

func (st state) clone() state {
	out := state{
		disposals:    make(map[uuid.UUID]model.Disposal, len(st.disposals)),
		companies:    make(map[uuid.UUID]model.Company, len(st.companies)),
		workers:      make(map[uuid.UUID]model.Worker, len(st.workers)),
		materials:    make(map[uuid.UUID]model.Material, len(st.materials)),
		achievements: append([]model.Achievement(nil), st.achievements...),
		order:        make(map[uuid.UUID]int64, len(st.order)),
	}
	for id, d := range st.disposals {
		out.disposals[id] = cloneDisposal(d)
	}
	for id, c := range st.companies {
		out.companies[id] = cloneCompany(c)
	}
	for id, w := range st.workers {
		out.workers[id] = w
	}
	for id, m := range st.materials {
		out.materials[id] = m
	}
	for id, n := range st.order {
		out.order[id] = n
	}
	return out
}

func cloneDisposal(d model.Disposal) model.Disposal {
	d.Materials = append([]model.MaterialLine{}, d.Materials...)
	return d
}

func cloneCompany(c model.Company) model.Company {
	c.Addresses = append([]model.Address{}, c.Addresses...)
	c.PickUpSchedule = append([]model.PickUpSchedule{}, c.PickUpSchedule...)
	c.DisposalHistory = append([]model.DisposalHistoryEntry{}, c.DisposalHistory...)
	c.Achievements = append([]model.HeldAchievement{}, c.Achievements...)
	return c
}

// Fixtures.

func (s *Store) AddCompany(c model.Company) model.Company {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.UserID == uuid.Nil {
		c.UserID = uuid.New()
	}
	c = cloneCompany(c)
	s.data.companies[c.ID] = c
	return cloneCompany(c)
}

func (s *Store) AddWorker(w model.Worker) model.Worker {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.UserID == uuid.Nil {
		w.UserID = uuid.New()
	}
	s.data.workers[w.ID] = w
	return w
}

func (s *Store) AddMaterial(m model.Material) model.Material {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	s.data.materials[m.ID] = m
	return m
}

func (s *Store) AddAchievement(a model.Achievement) model.Achievement {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	s.data.achievements = append(s.data.achievements, a)
	return a
}

// PutDisposal stores d as-is, assigning an id when it has none.
func (s *Store) PutDisposal(d model.Disposal) model.Disposal {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	s.putDisposal(d)
	return cloneDisposal(d)
}

func (s *Store) putDisposal(d model.Disposal) {
	if _, ok := s.data.order[d.ID]; !ok {
		s.seq++
		s.data.order[d.ID] = s.seq
	}
	s.data.disposals[d.ID] = cloneDisposal(d)
}

// Disposal returns the stored disposal for assertions.
func (s *Store) Disposal(id uuid.UUID) model.Disposal {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return cloneDisposal(s.data.disposals[id])
}

// Company returns the stored company for assertions.
func (s *Store) Company(id uuid.UUID) model.Company {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return cloneCompany(s.data.companies[id])
}

// Disposals.

func (s *Store) CreateDisposal(ctx context.Context, d model.Disposal) (*model.Disposal, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "CreateDisposal"); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	d.ID = uuid.New()
	d.Status = model.DisposalPending
	d.CreatedAt, d.UpdatedAt = now, now
	if d.Materials == nil {
		d.Materials = []model.MaterialLine{}
	}
	s.putDisposal(d)
	out := s.enrich(d)
	return &out, nil
}

func (s *Store) enrich(d model.Disposal) model.Disposal {
	d = cloneDisposal(d)
	d.Location = nil
	if company, ok := s.data.companies[d.CompanyID]; ok {
		if addr, ok := company.FindAddress(d.AddressName); ok {
			d.Location = &addr
		}
	}
	return d
}

func (s *Store) GetDisposal(ctx context.Context, id uuid.UUID) (*model.Disposal, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "GetDisposal"); err != nil {
		return nil, err
	}
	d, ok := s.data.disposals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s.enrich(d)
	return &out, nil
}

func (s *Store) LockDisposal(ctx context.Context, id uuid.UUID) (*model.Disposal, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "LockDisposal"); err != nil {
		return nil, err
	}
	d, ok := s.data.disposals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s.enrich(d)
	return &out, nil
}

func (s *Store) ListDisposals(ctx context.Context, filter model.DisposalFilter) ([]model.Disposal, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "ListDisposals"); err != nil {
		return nil, err
	}
	out := []model.Disposal{}
	for _, d := range s.data.disposals {
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		if filter.CompanyID != nil && d.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.WorkerID != nil && (d.WorkerID == nil || *d.WorkerID != *filter.WorkerID) {
			continue
		}
		out = append(out, s.enrich(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DisposalDate.Equal(out[j].DisposalDate) {
			return out[i].DisposalDate.Before(out[j].DisposalDate)
		}
		return s.data.order[out[i].ID] < s.data.order[out[j].ID]
	})
	return out, nil
}

func (s *Store) TransitionDisposal(ctx context.Context, id uuid.UUID, from []model.DisposalStatus, change model.StatusChange) error {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "TransitionDisposal"); err != nil {
		return err
	}
	d, ok := s.data.disposals[id]
	if !ok {
		return repository.ErrNotFound
	}
	allowed := false
	for _, status := range from {
		if d.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return repository.ErrStatusMismatch
	}

	d.Status = change.Status
	if change.WorkerID != nil {
		workerID := *change.WorkerID
		d.WorkerID = &workerID
	}
	if change.RejectionMessage != nil {
		d.RejectionMessage = *change.RejectionMessage
	}
	if change.CompletedAt != nil {
		completedAt := *change.CompletedAt
		d.CompletedAt = &completedAt
	}
	d.UpdatedAt = time.Now().UTC()
	s.putDisposal(d)
	return nil
}

func (s *Store) SaveDisposalLines(ctx context.Context, id uuid.UUID, lines []model.MaterialLine, totalPrice float64) error {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "SaveDisposalLines"); err != nil {
		return err
	}
	d, ok := s.data.disposals[id]
	if !ok {
		return repository.ErrNotFound
	}
	if d.Status != model.DisposalPending {
		return repository.ErrStatusMismatch
	}
	d.Materials = append([]model.MaterialLine{}, lines...)
	d.TotalPrice = totalPrice
	s.putDisposal(d)
	return nil
}

func (s *Store) UpdateDisposalDetails(ctx context.Context, id uuid.UUID, date *time.Time, addressName *string) error {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "UpdateDisposalDetails"); err != nil {
		return err
	}
	d, ok := s.data.disposals[id]
	if !ok {
		return repository.ErrNotFound
	}
	if d.Status != model.DisposalPending {
		return repository.ErrStatusMismatch
	}
	if date != nil {
		d.DisposalDate = *date
	}
	if addressName != nil {
		d.AddressName = *addressName
	}
	s.putDisposal(d)
	return nil
}

func (s *Store) SaveImpactSnapshot(ctx context.Context, id uuid.UUID, snapshot model.ImpactSnapshot) error {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "SaveImpactSnapshot"); err != nil {
		return err
	}
	d, ok := s.data.disposals[id]
	if !ok {
		return repository.ErrNotFound
	}
	snap := snapshot
	snap.Lines = append([]model.LineImpact{}, snapshot.Lines...)
	d.Impact = &snap
	s.putDisposal(d)
	return nil
}

// Companies.

func (s *Store) CreateCompany(ctx context.Context, c model.Company) (*model.Company, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "CreateCompany"); err != nil {
		return nil, err
	}
	for id, existing := range s.data.companies {
		if existing.UserID == c.UserID {
			existing.Name = c.Name
			s.data.companies[id] = existing
			out := cloneCompany(existing)
			return &out, nil
		}
	}
	c.ID = uuid.New()
	s.data.companies[c.ID] = cloneCompany(c)
	out := cloneCompany(c)
	return &out, nil
}

func (s *Store) GetCompany(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "GetCompany"); err != nil {
		return nil, err
	}
	c, ok := s.data.companies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneCompany(c)
	return &out, nil
}

func (s *Store) GetCompanyByUser(ctx context.Context, userID uuid.UUID) (*model.Company, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "GetCompanyByUser"); err != nil {
		return nil, err
	}
	for _, c := range s.data.companies {
		if c.UserID == userID {
			out := cloneCompany(c)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ListCompanies(ctx context.Context) ([]model.Company, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "ListCompanies"); err != nil {
		return nil, err
	}
	out := make([]model.Company, 0, len(s.data.companies))
	for _, c := range s.data.companies {
		out = append(out, cloneCompany(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateCompanyProfile(ctx context.Context, id uuid.UUID, patch model.CompanyProfilePatch) error {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "UpdateCompanyProfile"); err != nil {
		return err
	}
	c, ok := s.data.companies[id]
	if !ok {
		return repository.ErrNotFound
	}
	for otherID, other := range s.data.companies {
		if otherID == id {
			continue
		}
		if patch.Name != nil && other.Name == *patch.Name {
			return repository.ErrDuplicate
		}
		if patch.ContactNumber != nil && other.ContactNumber == *patch.ContactNumber {
			return repository.ErrDuplicate
		}
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.ContactNumber != nil {
		c.ContactNumber = *patch.ContactNumber
	}
	if patch.ProfileImage != nil {
		c.ProfileImage = *patch.ProfileImage
	}
	s.data.companies[id] = c
	return nil
}

func (s *Store) AddAddress(ctx context.Context, companyID uuid.UUID, addr model.Address) error {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "AddAddress"); err != nil {
		return err
	}
	c, ok := s.data.companies[companyID]
	if !ok {
		return repository.ErrNotFound
	}
	if _, exists := c.FindAddress(addr.Name); exists {
		return repository.ErrDuplicate
	}
	c.Addresses = append(c.Addresses, addr)
	s.data.companies[companyID] = c
	return nil
}

func (s *Store) RemoveAddress(ctx context.Context, companyID uuid.UUID, name string) error {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "RemoveAddress"); err != nil {
		return err
	}
	c, ok := s.data.companies[companyID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := make([]model.Address, 0, len(c.Addresses))
	for _, a := range c.Addresses {
		if a.Name != name {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(c.Addresses) {
		return repository.ErrNotFound
	}
	c.Addresses = kept
	s.data.companies[companyID] = c
	return nil
}

func (s *Store) AddPickUpSchedule(ctx context.Context, companyID uuid.UUID, sched model.PickUpSchedule) (*model.PickUpSchedule, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "AddPickUpSchedule"); err != nil {
		return nil, err
	}
	c, ok := s.data.companies[companyID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, existing := range c.PickUpSchedule {
		if existing.Day == sched.Day {
			return nil, repository.ErrDuplicate
		}
	}
	sched.ID = uuid.New()
	c.PickUpSchedule = append(c.PickUpSchedule, sched)
	s.data.companies[companyID] = c
	return &sched, nil
}

func (s *Store) UpdatePickUpSchedule(
	ctx context.Context,
	companyID, scheduleID uuid.UUID,
	patch model.PickUpSchedulePatch,
) (*model.PickUpSchedule, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "UpdatePickUpSchedule"); err != nil {
		return nil, err
	}
	c, ok := s.data.companies[companyID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	idx := -1
	for i, existing := range c.PickUpSchedule {
		if existing.ID == scheduleID {
			idx = i
			continue
		}
		if patch.Day != nil && existing.Day == *patch.Day {
			return nil, repository.ErrDuplicate
		}
	}
	if idx < 0 {
		return nil, repository.ErrNotFound
	}
	sched := c.PickUpSchedule[idx]
	if patch.Day != nil {
		sched.Day = *patch.Day
	}
	if patch.Time != nil {
		sched.Time = *patch.Time
	}
	if patch.AddressName != nil {
		sched.AddressName = *patch.AddressName
	}
	c.PickUpSchedule[idx] = sched
	s.data.companies[companyID] = c
	return &sched, nil
}

func (s *Store) DeletePickUpSchedule(ctx context.Context, companyID, scheduleID uuid.UUID) error {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "DeletePickUpSchedule"); err != nil {
		return err
	}
	c, ok := s.data.companies[companyID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := make([]model.PickUpSchedule, 0, len(c.PickUpSchedule))
	for _, sched := range c.PickUpSchedule {
		if sched.ID != scheduleID {
			kept = append(kept, sched)
		}
	}
	if len(kept) == len(c.PickUpSchedule) {
		return repository.ErrNotFound
	}
	c.PickUpSchedule = kept
	s.data.companies[companyID] = c
	return nil
}

func (s *Store) ClearPickUpSchedules(ctx context.Context, companyID uuid.UUID) error {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "ClearPickUpSchedules"); err != nil {
		return err
	}
	c, ok := s.data.companies[companyID]
	if !ok {
		return nil
	}
	c.PickUpSchedule = []model.PickUpSchedule{}
	s.data.companies[companyID] = c
	return nil
}

func (s *Store) LockCompanyStats(ctx context.Context, companyID uuid.UUID) (model.CompanyStats, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "LockCompanyStats"); err != nil {
		return model.CompanyStats{}, err
	}
	c, ok := s.data.companies[companyID]
	if !ok {
		return model.CompanyStats{}, repository.ErrNotFound
	}
	return c.Stats, nil
}

func (s *Store) SaveCompanyStats(ctx context.Context, companyID uuid.UUID, stats model.CompanyStats) error {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "SaveCompanyStats"); err != nil {
		return err
	}
	c, ok := s.data.companies[companyID]
	if !ok {
		return repository.ErrNotFound
	}
	c.Stats = stats
	s.data.companies[companyID] = c
	return nil
}

func (s *Store) AppendDisposalHistory(ctx context.Context, companyID uuid.UUID, entry model.DisposalHistoryEntry) (bool, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "AppendDisposalHistory"); err != nil {
		return false, err
	}
	for _, c := range s.data.companies {
		for _, h := range c.DisposalHistory {
			if h.DisposalID == entry.DisposalID {
				return false, nil
			}
		}
	}
	c, ok := s.data.companies[companyID]
	if !ok {
		return false, repository.ErrNotFound
	}
	c.DisposalHistory = append(c.DisposalHistory, entry)
	s.data.companies[companyID] = c
	return true, nil
}

func (s *Store) ListHeldAchievements(ctx context.Context, companyID uuid.UUID) ([]model.HeldAchievement, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "ListHeldAchievements"); err != nil {
		return nil, err
	}
	c, ok := s.data.companies[companyID]
	if !ok {
		return []model.HeldAchievement{}, nil
	}
	return append([]model.HeldAchievement{}, c.Achievements...), nil
}

func (s *Store) AddHeldAchievements(ctx context.Context, companyID uuid.UUID, held []model.HeldAchievement) error {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "AddHeldAchievements"); err != nil {
		return err
	}
	c, ok := s.data.companies[companyID]
	if !ok {
		return repository.ErrNotFound
	}
	have := c.HeldSet()
	for _, h := range held {
		if _, ok := have[h.AchievementID]; ok {
			continue
		}
		have[h.AchievementID] = struct{}{}
		c.Achievements = append(c.Achievements, h)
	}
	s.data.companies[companyID] = c
	return nil
}

// Workers.

func (s *Store) CreateWorker(ctx context.Context, w model.Worker) (*model.Worker, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "CreateWorker"); err != nil {
		return nil, err
	}
	for id, existing := range s.data.workers {
		if existing.UserID == w.UserID {
			existing.Name, existing.Phone = w.Name, w.Phone
			s.data.workers[id] = existing
			return &existing, nil
		}
	}
	w.ID = uuid.New()
	s.data.workers[w.ID] = w
	return &w, nil
}

func (s *Store) GetWorker(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "GetWorker"); err != nil {
		return nil, err
	}
	w, ok := s.data.workers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (s *Store) GetWorkerByUser(ctx context.Context, userID uuid.UUID) (*model.Worker, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "GetWorkerByUser"); err != nil {
		return nil, err
	}
	for _, w := range s.data.workers {
		if w.UserID == userID {
			out := w
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ListWorkers(ctx context.Context) ([]model.Worker, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "ListWorkers"); err != nil {
		return nil, err
	}
	out := make([]model.Worker, 0, len(s.data.workers))
	for _, w := range s.data.workers {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateWorkerProfile(ctx context.Context, id uuid.UUID, patch model.WorkerProfilePatch) error {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "UpdateWorkerProfile"); err != nil {
		return err
	}
	w, ok := s.data.workers[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Name != nil {
		w.Name = *patch.Name
	}
	if patch.CurrentLocation != nil {
		loc := *patch.CurrentLocation
		w.CurrentLocation = &loc
	}
	s.data.workers[id] = w
	return nil
}

// Catalog.

func (s *Store) GetMaterial(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "GetMaterial"); err != nil {
		return nil, err
	}
	m, ok := s.data.materials[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (s *Store) sortedMaterials() []model.Material {
	out := make([]model.Material, 0, len(s.data.materials))
	for _, m := range s.data.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) ListMaterials(ctx context.Context) ([]model.Material, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "ListMaterials"); err != nil {
		return nil, err
	}
	return s.sortedMaterials(), nil
}

func (s *Store) GetMaterialsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Material, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "GetMaterialsByIDs"); err != nil {
		return nil, err
	}
	out := []model.Material{}
	for _, id := range ids {
		if m, ok := s.data.materials[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) SearchMaterials(ctx context.Context, filter model.MaterialFilter) ([]model.Material, int64, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "SearchMaterials"); err != nil {
		return nil, 0, err
	}
	var matched []model.Material
	needle := strings.ToLower(filter.Search)
	for _, m := range s.sortedMaterials() {
		if needle != "" && !strings.Contains(strings.ToLower(m.Name), needle) {
			continue
		}
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		matched = append(matched, m)
	}
	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []model.Material{}, total, nil
	}
	end := len(matched)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}

func (s *Store) UpsertMaterial(ctx context.Context, m model.Material) (*model.Material, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "UpsertMaterial"); err != nil {
		return nil, err
	}
	for id, existing := range s.data.materials {
		if existing.Name == m.Name {
			m.ID = id
			s.data.materials[id] = m
			return &m, nil
		}
	}
	m.ID = uuid.New()
	s.data.materials[m.ID] = m
	return &m, nil
}

func (s *Store) ListAchievements(ctx context.Context) ([]model.Achievement, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "ListAchievements"); err != nil {
		return nil, err
	}
	return append([]model.Achievement{}, s.data.achievements...), nil
}

func (s *Store) GetAchievement(ctx context.Context, id uuid.UUID) (*model.Achievement, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "GetAchievement"); err != nil {
		return nil, err
	}
	for _, a := range s.data.achievements {
		if a.ID == id {
			out := a
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) UpsertAchievement(ctx context.Context, a model.Achievement) (*model.Achievement, error) {
	defer s.lock(ctx)()
	if err := s.fail(ctx, "UpsertAchievement"); err != nil {
		return nil, err
	}
	for i, existing := range s.data.achievements {
		if existing.Title == a.Title {
			a.ID = existing.ID
			s.data.achievements[i] = a
			return &a, nil
		}
	}
	a.ID = uuid.New()
	s.data.achievements = append(s.data.achievements, a)
	return &a, nil
}
