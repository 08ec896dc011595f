// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/sdss-manga/scheduler/internal/model"
	schedulererrors "github.com/sdss-manga/scheduler/pkg/errors"
)

// MemoryStore is an in-process reference Port implementation: a fixture
// store for tests and for callers that don't need a real database. It is
// safe for concurrent use; WithTransaction snapshots the whole store on
// the outermost call and restores it if fn returns an error, mirroring the
// commit-only-at-outermost-exit contract of a real RDBMS session.
type MemoryStore struct {
	mu sync.Mutex

	plates    map[int]*model.Plate
	fields    map[int]*model.Field
	sets      map[int]*model.Set
	exposures map[int]*model.Exposure // by ExposureNo
	plateOf   map[int]int             // ExposureNo -> PlateID

	depth int
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		plates:    make(map[int]*model.Plate),
		fields:    make(map[int]*model.Field),
		sets:      make(map[int]*model.Set),
		exposures: make(map[int]*model.Exposure),
		plateOf:   make(map[int]int),
	}
}

// SeedPlate registers a plate (and its current sets/exposures) as fixture
// data. Intended for test setup, not for use by the scheduling core.
func (m *MemoryStore) SeedPlate(p *model.Plate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plates[p.PlateID] = p
	for _, s := range p.Sets {
		m.sets[s.SetID] = s
		for _, e := range s.Exposures {
			m.exposures[e.ExposureNo] = e
			m.plateOf[e.ExposureNo] = p.PlateID
		}
	}
	for _, e := range p.Unassigned {
		m.exposures[e.ExposureNo] = e
		m.plateOf[e.ExposureNo] = p.PlateID
	}
}

// SeedField registers a field as fixture data.
func (m *MemoryStore) SeedField(f *model.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields[f.MangaTileID] = f
}

func (m *MemoryStore) GetPlates(_ context.Context, options QueryOptions) ([]*model.Plate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Plate, 0, len(m.plates))
	for _, p := range m.plates {
		if options.PlugStatus == PlugOnlyPlugged && !p.Plugged {
			continue
		}
		if options.PlugStatus == PlugOnlyUnplugged && p.Plugged {
			continue
		}
		if options.MinPriority > 0 && p.Priority < options.MinPriority {
			continue
		}
		if options.OnlyMangaTileID != 0 && p.MangaTileID != options.OnlyMangaTileID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlateID < out[j].PlateID })
	return out, nil
}

func (m *MemoryStore) GetFields(_ context.Context, rejectDrilled, acceptPriority1 bool) ([]*model.Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Field, 0, len(m.fields))
	for _, f := range m.fields {
		if rejectDrilled && f.AsPlate != nil && f.AsPlate.Drilled {
			continue
		}
		if !acceptPriority1 && f.Priority <= 1 {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MangaTileID < out[j].MangaTileID })
	return out, nil
}

func (m *MemoryStore) GetExposures(_ context.Context, plateID int) ([]*model.Exposure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.plates[plateID]
	if !ok {
		return nil, schedulererrors.NewNotFoundError("plate", itoa(plateID))
	}
	return p.Exposures(), nil
}

// AllocateConsecutiveSetIDs finds the first gap of n consecutive unused
// IDs among existing set IDs, or continues from max+1 if no such gap
// exists (grounded on the source's getConsecutiveSets: sorted used PKs,
// split into consecutive runs, first run of adequate length wins).
func (m *MemoryStore) AllocateConsecutiveSetIDs(_ context.Context, n int) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return allocateConsecutiveIDs(usedSetIDs(m.sets), n), nil
}

func usedSetIDs(sets map[int]*model.Set) []int {
	used := make([]int, 0, len(sets))
	for id := range sets {
		used = append(used, id)
	}
	sort.Ints(used)
	return used
}

// allocateConsecutiveIDs is the pure allocation rule, factored out so this
// package's tests can exercise it without a store.
func allocateConsecutiveIDs(used []int, n int) []int {
	if len(used) == 0 {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}

	maxUsed := used[len(used)-1]
	usedSet := make(map[int]bool, len(used))
	for _, id := range used {
		usedSet[id] = true
	}

	runStart := -1
	runLen := 0
	for id := 1; id <= maxUsed; id++ {
		if usedSet[id] {
			runStart, runLen = -1, 0
			continue
		}
		if runStart == -1 {
			runStart = id
		}
		runLen++
		if runLen == n {
			out := make([]int, n)
			for i := range out {
				out[i] = runStart + i
			}
			return out
		}
	}

	out := make([]int, n)
	for i := range out {
		out[i] = maxUsed + 1 + i
	}
	return out
}

// WithTransaction snapshots store state before the outermost call and
// restores it if fn returns an error; the mutex itself is only held while
// taking the snapshot or applying its result, not across fn's body, so fn
// may freely call back into other Port methods (including a nested
// WithTransaction, which shares the outermost snapshot instead of taking
// its own).
func (m *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	outermost := m.depth == 0
	m.depth++

	var snapshot *MemoryStore
	if outermost {
		snapshot = m.snapshotLocked()
	}
	m.mu.Unlock()

	err := fn(withTransactionMarker(ctx))

	m.mu.Lock()
	m.depth--
	if outermost && err != nil {
		m.restoreLocked(snapshot)
	}
	m.mu.Unlock()

	if err != nil {
		return schedulererrors.WrapError(err)
	}
	return nil
}

func (m *MemoryStore) snapshotLocked() *MemoryStore {
	cp := NewMemoryStore()
	for id, p := range m.plates {
		cp.plates[id] = clonePlate(p)
	}
	for id, f := range m.fields {
		cp.fields[id] = f
	}
	for _, p := range cp.plates {
		for _, s := range p.Sets {
			cp.sets[s.SetID] = s
			for _, e := range s.Exposures {
				cp.exposures[e.ExposureNo] = e
				cp.plateOf[e.ExposureNo] = p.PlateID
			}
		}
		for _, e := range p.Unassigned {
			cp.exposures[e.ExposureNo] = e
			cp.plateOf[e.ExposureNo] = p.PlateID
		}
	}
	return cp
}

func (m *MemoryStore) restoreLocked(snapshot *MemoryStore) {
	m.plates = snapshot.plates
	m.fields = snapshot.fields
	m.sets = snapshot.sets
	m.exposures = snapshot.exposures
	m.plateOf = snapshot.plateOf
}

func clonePlate(p *model.Plate) *model.Plate {
	cp := *p
	cp.Statuses = make(map[model.PlateStatusLabel]bool, len(p.Statuses))
	for k, v := range p.Statuses {
		cp.Statuses[k] = v
	}
	cp.Sets = make([]*model.Set, len(p.Sets))
	for i, s := range p.Sets {
		sc := *s
		sc.Exposures = make([]*model.Exposure, len(s.Exposures))
		for j, e := range s.Exposures {
			sc.Exposures[j] = e.Clone()
		}
		cp.Sets[i] = &sc
	}
	cp.Unassigned = make([]*model.Exposure, len(p.Unassigned))
	for i, e := range p.Unassigned {
		cp.Unassigned[i] = e.Clone()
	}
	return &cp
}

func (m *MemoryStore) DeleteSet(_ context.Context, setID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sets[setID]
	if !ok {
		return nil
	}
	if s.IsOverride() {
		return schedulererrors.NewPreconditionError("deleteSet", "override-labeled sets are pinned")
	}
	delete(m.sets, setID)
	for _, e := range s.Exposures {
		plateID := m.plateOf[e.ExposureNo]
		if p, ok := m.plates[plateID]; ok {
			removeSet(p, setID)
		}
	}
	return nil
}

func removeSet(p *model.Plate, setID int) {
	out := p.Sets[:0]
	for _, s := range p.Sets {
		if s.SetID != setID {
			out = append(out, s)
		}
	}
	p.Sets = out
}

func (m *MemoryStore) UpdateExposureSetID(_ context.Context, exposureNo int, setID *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.exposures[exposureNo]
	if !ok {
		return schedulererrors.NewNotFoundError("exposure", itoa(exposureNo))
	}
	e.SetID = setID

	plateID := m.plateOf[exposureNo]
	p, ok := m.plates[plateID]
	if !ok {
		return nil
	}
	moveExposure(p, e, setID)

	// The arrangement engine creates Set objects by appending directly to
	// plate.Sets (it has no dedicated create-set call); mirror any
	// not-yet-tracked target set into m.sets here so AllocateConsecutiveSetIDs
	// and DeleteSet see it on their next call.
	if setID != nil {
		for _, s := range p.Sets {
			if s.SetID == *setID {
				m.sets[*setID] = s
				break
			}
		}
	}
	return nil
}

// moveExposure reconciles a plate's Sets/Unassigned split after an
// exposure's SetID changes: it removes e from wherever it currently sits
// and places it onto the target set's exposure list (or Unassigned).
func moveExposure(p *model.Plate, e *model.Exposure, setID *int) {
	for _, s := range p.Sets {
		s.Exposures = removeExposure(s.Exposures, e.ExposureNo)
	}
	p.Unassigned = removeExposure(p.Unassigned, e.ExposureNo)

	if setID == nil {
		p.Unassigned = append(p.Unassigned, e)
		sortByExposureNo(p.Unassigned)
		return
	}
	for _, s := range p.Sets {
		if s.SetID == *setID {
			s.Exposures = append(s.Exposures, e)
			sortByExposureNo(s.Exposures)
			return
		}
	}
}

func removeExposure(list []*model.Exposure, exposureNo int) []*model.Exposure {
	out := list[:0]
	for _, e := range list {
		if e.ExposureNo != exposureNo {
			out = append(out, e)
		}
	}
	return out
}

func sortByExposureNo(list []*model.Exposure) {
	sort.Slice(list, func(i, j int) bool { return list[i].ExposureNo < list[j].ExposureNo })
}

func (m *MemoryStore) RemoveOrphanSets(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sets {
		if len(s.Exposures) == 0 && !s.IsOverride() {
			delete(m.sets, id)
			for _, p := range m.plates {
				removeSet(p, id)
			}
			removed++
		}
	}
	return removed, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
