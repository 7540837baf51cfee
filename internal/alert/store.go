package alert

import (
	"coindcx-alert-bot/internal/types"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrStoreCorrupt = errors.New("alert store corrupt")

// Persister durably keeps the alerts of each owner.
type Persister interface {
	Load() (map[int64][]types.Alert, error)
	SaveOwner(owner int64, alerts []types.Alert) error
	Close() error
}

// Store is the concurrency-safe registry of alerts keyed by owner.
//
// mu guards the in-memory state and is never held across I/O. Writes to the
// persister happen after mu is released, ordered by persistMu and a per-owner
// generation so an older list never overwrites a newer one.
type Store struct {
	mu     sync.Mutex
	alerts map[int64][]types.Alert
	nextID map[int64]int64
	gen    map[int64]uint64

	persistMu sync.Mutex
	persisted map[int64]uint64
	persister Persister

	now func() time.Time
}

// NewStore builds a store from p's contents. A nil p keeps alerts in memory only.
// Persisted state that fails to load is logged and replaced by an empty store.
func NewStore(p Persister) *Store {
	s := &Store{
		alerts:    make(map[int64][]types.Alert),
		nextID:    make(map[int64]int64),
		gen:       make(map[int64]uint64),
		persisted: make(map[int64]uint64),
		persister: p,
		now:       time.Now,
	}

	if p == nil {
		return s
	}

	loaded, err := p.Load()
	if err != nil {
		log.WithError(errors.Wrap(ErrStoreCorrupt, err.Error())).Error("❌ Failed to load alerts, starting with an empty store")
		return s
	}

	var total int
	for owner, list := range loaded {
		for _, a := range list {
			a.Owner = owner
			if !validStored(a) || s.hasID(owner, a.ID) {
				log.WithFields(log.Fields{"owner": owner, "alert_id": a.ID}).Warn("⚠️ Skipping invalid persisted alert")
				continue
			}
			s.alerts[owner] = append(s.alerts[owner], a)
			if a.ID >= s.nextID[owner] {
				s.nextID[owner] = a.ID + 1
			}
			total++
		}
	}

	log.Infof("📦 Loaded %d alerts for %d owners", total, len(s.alerts))
	return s
}

func validStored(a types.Alert) bool {
	return a.ID > 0 && a.Symbol != "" && a.Direction.Valid() && types.ValidateThreshold(a.Target) == nil
}

func (s *Store) hasID(owner, id int64) bool {
	for _, a := range s.alerts[owner] {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Add registers a new alert and returns its identity within the owner's list.
func (s *Store) Add(owner int64, symbol string, direction types.Direction, target decimal.Decimal) (int64, error) {
	if !direction.Valid() {
		return 0, errors.Wrapf(types.ErrInvalidDirection, "%d", int(direction))
	}
	if err := types.ValidateThreshold(target); err != nil {
		return 0, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, errors.Wrap(types.ErrInvalidSymbol, "empty symbol")
	}

	s.mu.Lock()
	id := s.nextID[owner]
	if id == 0 {
		id = 1
	}
	s.nextID[owner] = id + 1
	s.alerts[owner] = append(s.alerts[owner], types.Alert{
		ID:        id,
		Owner:     owner,
		Symbol:    symbol,
		Direction: direction,
		Target:    target,
		CreatedAt: s.now(),
	})
	gen, list := s.touch(owner)
	s.mu.Unlock()

	s.persist(owner, gen, list)

	log.WithFields(log.Fields{"owner": owner, "alert_id": id, "symbol": symbol}).
		Debugf("Alert added: %s %s %s", symbol, direction, target)
	return id, nil
}

// List returns a copy of the owner's alerts in insertion order.
func (s *Store) List(owner int64) []types.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]types.Alert{}, s.alerts[owner]...)
}

// Remove deletes the alert with the given identity. Removing an alert that is
// already gone is not an error and reports false.
func (s *Store) Remove(owner, id int64) bool {
	s.mu.Lock()
	list := s.alerts[owner]
	idx := -1
	for i, a := range list {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	rest := make([]types.Alert, 0, len(list)-1)
	rest = append(rest, list[:idx]...)
	rest = append(rest, list[idx+1:]...)
	if len(rest) == 0 {
		delete(s.alerts, owner)
	} else {
		s.alerts[owner] = rest
	}
	gen, snapshot := s.touch(owner)
	s.mu.Unlock()

	s.persist(owner, gen, snapshot)
	return true
}

// SnapshotAll returns a point-in-time copy of every owner's alerts.
func (s *Store) SnapshotAll() map[int64][]types.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64][]types.Alert, len(s.alerts))
	for owner, list := range s.alerts {
		out[owner] = append([]types.Alert(nil), list...)
	}
	return out
}

// Count returns the total number of alerts across owners.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for _, list := range s.alerts {
		n += len(list)
	}
	return n
}

// Close flushes every owner to the persister and closes it.
func (s *Store) Close() error {
	if s.persister == nil {
		return nil
	}

	s.mu.Lock()
	owners := make([]int64, 0, len(s.gen))
	for owner := range s.gen {
		owners = append(owners, owner)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	type pending struct {
		gen  uint64
		list []types.Alert
	}
	flush := make(map[int64]pending, len(owners))
	for _, owner := range owners {
		flush[owner] = pending{s.gen[owner], append([]types.Alert(nil), s.alerts[owner]...)}
	}
	s.mu.Unlock()

	for _, owner := range owners {
		p := flush[owner]
		s.persist(owner, p.gen, p.list)
	}

	return s.persister.Close()
}

// touch bumps the owner's generation and copies its list; mu must be held.
func (s *Store) touch(owner int64) (uint64, []types.Alert) {
	s.gen[owner]++
	return s.gen[owner], append([]types.Alert(nil), s.alerts[owner]...)
}

func (s *Store) persist(owner int64, gen uint64, list []types.Alert) {
	if s.persister == nil {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if gen <= s.persisted[owner] {
		return
	}
	if err := s.persister.SaveOwner(owner, list); err != nil {
		log.WithError(err).WithField("owner", owner).Error("❌ Failed to persist alerts")
		return
	}
	s.persisted[owner] = gen
}
