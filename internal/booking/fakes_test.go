package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mtourkz/booking-api/internal/model"
)

// In-memory collaborators for exercising the orchestrator without a
// database. memStore emulates the transactional store: writes go to a
// staged copy and only land when the callback returns nil.

type memState struct {
	cabinets     []model.Cabinet
	reservations map[uint64]*model.Reservation
	carts        map[uint64]*model.Cart
	visitors     map[uint64][]model.Visitor
	payments     map[uint64]*model.Payment
	nextID       uint64
}

func newMemState() *memState {
	return &memState{
		reservations: map[uint64]*model.Reservation{},
		carts:        map[uint64]*model.Cart{},
		visitors:     map[uint64][]model.Visitor{},
		payments:     map[uint64]*model.Payment{},
		nextID:       1,
	}
}

func (s *memState) id() uint64 {
	v := s.nextID
	s.nextID++
	return v
}

func (s *memState) clone() *memState {
	c := newMemState()
	c.nextID = s.nextID
	c.cabinets = append([]model.Cabinet(nil), s.cabinets...)
	for k, v := range s.reservations {
		cp := *v
		c.reservations[k] = &cp
	}
	for k, v := range s.carts {
		cp := *v
		c.carts[k] = &cp
	}
	for k, v := range s.visitors {
		c.visitors[k] = append([]model.Visitor(nil), v...)
	}
	for k, v := range s.payments {
		cp := *v
		c.payments[k] = &cp
	}
	return c
}

// free reports the free cabinets of a unit across r, position order.
func (s *memState) free(unitID uint64, r model.DateRange) []model.Cabinet {
	var out []model.Cabinet
	for _, cab := range s.cabinets {
		if cab.UnitID != unitID || cab.IsDeleted {
			continue
		}
		blocked := false
		for _, rv := range s.reservations {
			if rv.CabinetID != cab.ID || rv.IsDeleted {
				continue
			}
			if rv.ClosedForRepair || rv.Range.Overlaps(r) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, cab)
		}
	}
	return out
}

type memStore struct {
	mu    sync.Mutex
	state *memState
}

func newMemStore() *memStore { return &memStore{state: newMemState()} }

func (m *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	staged := m.state.clone()
	if err := fn(&memTx{state: staged}); err != nil {
		return err
	}
	m.state = staged
	return nil
}

// FreeCabinets implements AvailabilityReader on the committed state.
func (m *memStore) FreeCabinets(ctx context.Context, unitID uint64, r model.DateRange) ([]model.Cabinet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.free(unitID, r), nil
}

type memTx struct {
	state *memState
}

func (t *memTx) FreeCabinetsForUpdate(ctx context.Context, unitID uint64, r model.DateRange) ([]model.Cabinet, error) {
	return t.state.free(unitID, r), nil
}

func (t *memTx) CabinetFree(ctx context.Context, cabinetID uint64, r model.DateRange) (bool, error) {
	for _, cab := range t.state.cabinets {
		if cab.ID != cabinetID || cab.IsDeleted {
			continue
		}
		for _, rv := range t.state.reservations {
			if rv.CabinetID == cabinetID && !rv.IsDeleted &&
				(rv.ClosedForRepair || rv.Range.Overlaps(r)) {
				return false, nil
			}
		}
		return true, nil
	}
	return false, nil
}

func (t *memTx) CreateCart(ctx context.Context, cart *model.Cart) error {
	cart.ID = t.state.id()
	cp := *cart
	t.state.carts[cart.ID] = &cp
	return nil
}

func (t *memTx) AddVisitors(ctx context.Context, cartID uint64, visitors []model.Visitor) error {
	t.state.visitors[cartID] = append([]model.Visitor(nil), visitors...)
	return nil
}

func (t *memTx) CreateReservations(ctx context.Context, rows []*model.Reservation) error {
	for _, rv := range rows {
		rv.ID = t.state.id()
		cp := *rv
		t.state.reservations[rv.ID] = &cp
	}
	return nil
}

func (t *memTx) CreatePayment(ctx context.Context, p *model.Payment, reservationIDs []uint64) error {
	p.ID = t.state.id()
	p.CreatedAt = time.Now().UTC()
	cp := *p
	t.state.payments[p.ID] = &cp
	for _, id := range reservationIDs {
		rv, ok := t.state.reservations[id]
		if !ok {
			return fmt.Errorf("unknown reservation %d", id)
		}
		pid := p.ID
		rv.PaymentID = &pid
	}
	return nil
}

// memCatalog serves units by id.
type memCatalog struct {
	units map[uint64]*model.LodgingUnit
}

func (c *memCatalog) LodgingUnit(ctx context.Context, id uint64) (*model.LodgingUnit, error) {
	u, ok := c.units[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

// stubGateway records calls and can be told to fail.
type stubGateway struct {
	mu     sync.Mutex
	fail   error
	calls  int
	orders []string
}

func (g *stubGateway) CreatePayment(ctx context.Context, amountMinor int64, orderID string, contact Contact) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.orders = append(g.orders, orderID)
	if g.fail != nil {
		return "", g.fail
	}
	return "https://pay.example.kz/p/" + orderID, nil
}

// recordingNotifier collects outgoing notifications.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
	fail error
}

func (n *recordingNotifier) Notify(ctx context.Context, userID uint64, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, fmt.Sprintf("%d:%s", userID, subject))
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// memSettlement implements SettlementStore and CancelStore over the
// memStore's committed state.
type memSettlement struct {
	store *memStore
}

func (s *memSettlement) SettleByCart(ctx context.Context, cartPublicID string, paid bool) (bool, uint64, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	st := s.store.state
	for _, cart := range st.carts {
		if cart.PublicID != cartPublicID {
			continue
		}
		for _, p := range st.payments {
			if p.CartID != cart.ID {
				continue
			}
			// only carts still awaiting payment settle; terminal carts
			// treat the callback as a replay
			if cart.Status != model.CheckoutAwaitingPayment {
				return false, p.UserID, nil
			}
			target := model.PaymentNotPaid
			status := model.CheckoutFailed
			if paid {
				target = model.PaymentPaid
				status = model.CheckoutConfirmed
			}
			p.Status = target
			cart.Status = status
			for _, rv := range st.reservations {
				if rv.PaymentID != nil && *rv.PaymentID == p.ID && !rv.IsDeleted {
					rv.Paid = paid
				}
			}
			return true, p.UserID, nil
		}
		return false, 0, ErrNotFound
	}
	return false, 0, ErrNotFound
}

func (s *memSettlement) CancelReservation(ctx context.Context, reservationID, userID uint64) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	rv, ok := s.store.state.reservations[reservationID]
	if !ok || rv.IsDeleted {
		return ErrNotFound
	}
	if rv.ReservatorID == nil || *rv.ReservatorID != userID {
		return errors.New("forbidden")
	}
	if rv.Paid {
		return errors.New("conflict")
	}
	rv.IsDeleted = true
	return nil
}

// memReaperStore implements ReaperStore over the memStore.
type memReaperStore struct {
	store *memStore
}

func (r *memReaperStore) ExpiredUnpaid(ctx context.Context, cutoff time.Time) ([]ExpiredReservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []ExpiredReservation
	for _, rv := range r.store.state.reservations {
		if rv.IsDeleted || rv.Paid || rv.ClosedForRepair || rv.PaymentID == nil {
			continue
		}
		p := r.store.state.payments[*rv.PaymentID]
		if p == nil || p.Status == model.PaymentPaid || !p.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, ExpiredReservation{
			ReservationID: rv.ID,
			PaymentID:     p.ID,
			CartID:        p.CartID,
			UserID:        p.UserID,
		})
	}
	return out, nil
}

func (r *memReaperStore) PaymentPaid(ctx context.Context, paymentID uint64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.state.payments[paymentID]
	if !ok {
		return false, fmt.Errorf("unknown payment %d", paymentID)
	}
	return p.Status == model.PaymentPaid, nil
}

func (r *memReaperStore) ReleaseReservation(ctx context.Context, reservationID uint64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rv, ok := r.store.state.reservations[reservationID]
	if !ok {
		return fmt.Errorf("unknown reservation %d", reservationID)
	}
	if !rv.Paid {
		rv.IsDeleted = true
	}
	return nil
}

func (r *memReaperStore) MarkReservationPaid(ctx context.Context, reservationID uint64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rv, ok := r.store.state.reservations[reservationID]
	if !ok {
		return fmt.Errorf("unknown reservation %d", reservationID)
	}
	rv.Paid = true
	return nil
}

// memCodeStore implements CodeStore.
type memCodeStore struct {
	mu    sync.Mutex
	codes map[string]string // user:purpose -> code
	next  string
}

func newMemCodeStore() *memCodeStore {
	return &memCodeStore{codes: map[string]string{}, next: "123456"}
}

func (s *memCodeStore) key(userID uint64, purpose string) string {
	return fmt.Sprintf("%d:%s", userID, purpose)
}

func (s *memCodeStore) Regenerate(ctx context.Context, userID uint64, purpose string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[s.key(userID, purpose)] = s.next
	return s.next, nil
}

func (s *memCodeStore) Consume(ctx context.Context, userID uint64, purpose, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(userID, purpose)
	if s.codes[k] != code || code == "" {
		return false, nil
	}
	delete(s.codes, k)
	return true, nil
}

// memApprovalStore implements ApprovalStore over the memStore.
type memApprovalStore struct {
	store *memStore
}

func (s *memApprovalStore) Reservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	rv, ok := s.store.state.reservations[id]
	if !ok || rv.IsDeleted {
		return nil, ErrNotFound
	}
	cp := *rv
	return &cp, nil
}

func (s *memApprovalStore) SetApprovedStatus(ctx context.Context, reservationID uint64, status int) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	rv, ok := s.store.state.reservations[reservationID]
	if !ok {
		return fmt.Errorf("unknown reservation %d", reservationID)
	}
	rv.ApprovedStatus = status
	return nil
}

// memOwnershipStore implements OwnershipStore with a fixed unit->owner
// mapping.
type memOwnershipStore struct {
	owners map[uint64]uint64 // unitID -> owning user
}

func (s *memOwnershipStore) OwnsUnit(ctx context.Context, userID, unitID uint64) error {
	owner, ok := s.owners[unitID]
	if !ok {
		return ErrNotFound
	}
	if owner != userID {
		return ErrForbidden
	}
	return nil
}

// world bundles a fully wired in-memory service for tests.
type world struct {
	store    *memStore
	catalog  *memCatalog
	gateway  *stubGateway
	notifier *recordingNotifier
	settle   *memSettlement
	svc      *Service
}

func newWorld() *world {
	store := newMemStore()
	catalog := &memCatalog{units: map[uint64]*model.LodgingUnit{}}
	gateway := &stubGateway{}
	notifier := &recordingNotifier{}
	settle := &memSettlement{store: store}
	svc := NewService(store, store, catalog, gateway, settle, settle, notifier, nil)
	return &world{
		store:    store,
		catalog:  catalog,
		gateway:  gateway,
		notifier: notifier,
		settle:   settle,
		svc:      svc,
	}
}

// addUnit registers a unit and materializes its cabinets.
func (w *world) addUnit(id uint64, category string, placeCount int, priceMinor int64) *model.LodgingUnit {
	u := &model.LodgingUnit{
		ID:         id,
		TourID:     1,
		Title:      fmt.Sprintf("unit %d", id),
		Category:   category,
		Policy:     model.ResolvePolicy(category),
		PriceMinor: priceMinor,
		PlaceCount: placeCount,
	}
	w.catalog.units[id] = u
	for pos := 1; pos <= placeCount; pos++ {
		w.store.state.cabinets = append(w.store.state.cabinets, model.Cabinet{
			ID:       w.store.state.id(),
			UnitID:   id,
			Position: pos,
		})
	}
	return u
}

func mustRange(t interface{ Fatalf(string, ...any) }, start, end string) model.DateRange {
	r, err := model.ParseDateRange(start, end)
	if err != nil {
		t.Fatalf("parse range: %v", err)
	}
	return r
}

func visitors(n int) []model.Visitor {
	out := make([]model.Visitor, n)
	for i := range out {
		out[i] = model.Visitor{FirstName: fmt.Sprintf("Guest%d", i+1), LastName: "Test"}
	}
	return out
}
