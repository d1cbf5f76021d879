package factory

import (
	"fmt"
	"sync"

	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
)

// Warehouse holds raw materials and finished products under one lock.
//
// Raw materials can be reserved: a reservation holds units aside so that a
// later Consume cannot fail because another worker took them in between.
// Availability checks always look at quantity - reserved.
//
// Depletion notifications are raised once per shortage of a material. The
// shortage clears when that material is restocked or RearmShortage is called.
type Warehouse struct {
	mu sync.Mutex

	raw      map[MaterialKind]int
	reserved map[MaterialKind]int
	finished map[Product]int
	shortage map[MaterialKind]bool

	sink    EventSink
	changed shared.Broadcast
}

// Reservation is a hold on raw material units
type Reservation struct {
	material MaterialKind
	quantity int
	settled  bool
}

func (r *Reservation) Material() MaterialKind { return r.material }
func (r *Reservation) Quantity() int          { return r.quantity }

// NewWarehouse creates an empty warehouse
func NewWarehouse() *Warehouse {
	return &Warehouse{
		raw:      make(map[MaterialKind]int),
		reserved: make(map[MaterialKind]int),
		finished: make(map[Product]int),
		shortage: make(map[MaterialKind]bool),
		sink:     noOpSink{},
	}
}

// Attach sets the sink receiving MaterialDepleted notifications
func (w *Warehouse) Attach(sink EventSink) {
	if sink == nil {
		return
	}
	w.mu.Lock()
	w.sink = sink
	w.mu.Unlock()
}

// Changed returns a channel closed on the next stock increase or released reservation
func (w *Warehouse) Changed() <-chan struct{} {
	return w.changed.Wait()
}

// Raw materials

// AddRawMaterial stocks quantity units of kind and clears any shortage of it
func (w *Warehouse) AddRawMaterial(kind MaterialKind, quantity int) error {
	if !kind.IsValid() {
		return &ErrUnknownMaterial{Kind: kind}
	}
	if quantity < 0 {
		return &ErrInvalidArgument{Field: "quantity", Reason: fmt.Sprintf("must be non-negative, got %d", quantity)}
	}

	w.mu.Lock()
	w.raw[kind] += quantity
	if quantity > 0 {
		delete(w.shortage, kind)
	}
	w.mu.Unlock()

	if quantity > 0 {
		w.changed.Notify()
	}
	return nil
}

// RemoveRawMaterial takes quantity unreserved units of kind, all or nothing
func (w *Warehouse) RemoveRawMaterial(kind MaterialKind, quantity int) error {
	if !kind.IsValid() {
		return &ErrUnknownMaterial{Kind: kind}
	}
	if quantity < 0 {
		return &ErrInvalidArgument{Field: "quantity", Reason: fmt.Sprintf("must be non-negative, got %d", quantity)}
	}

	w.mu.Lock()
	available := w.availableUnsafe(kind)
	if available < quantity {
		w.mu.Unlock()
		return &ErrInsufficientStock{Item: string(kind), Requested: quantity, Available: available}
	}
	w.raw[kind] -= quantity
	sink, depleted := w.checkDepletedUnsafe(kind)
	w.mu.Unlock()

	if depleted {
		sink.MaterialDepleted(MaterialDepleted{Material: kind})
	}
	return nil
}

// HasEnough reports whether quantity unreserved units of kind are held.
// An insufficient answer raises MaterialDepleted for a catalog material.
func (w *Warehouse) HasEnough(kind MaterialKind, quantity int) bool {
	if !kind.IsValid() {
		return false
	}

	w.mu.Lock()
	enough := w.availableUnsafe(kind) >= quantity
	var sink EventSink
	notify := false
	if !enough {
		sink, notify = w.markShortageUnsafe(kind)
	}
	w.mu.Unlock()

	if notify {
		sink.MaterialDepleted(MaterialDepleted{Material: kind})
	}
	return enough
}

// Quantity returns units of kind held, including reserved ones
func (w *Warehouse) Quantity(kind MaterialKind) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.raw[kind]
}

// Available returns unreserved units of kind
func (w *Warehouse) Available(kind MaterialKind) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.availableUnsafe(kind)
}

// LookupMaterial resolves a kind against the catalog
func (w *Warehouse) LookupMaterial(kind MaterialKind) (Material, bool) {
	return LookupMaterial(kind)
}

// RearmShortage lets the next failed check of kind raise MaterialDepleted again
func (w *Warehouse) RearmShortage(kind MaterialKind) {
	w.mu.Lock()
	delete(w.shortage, kind)
	w.mu.Unlock()
}

// Reservations

// Reserve holds quantity unreserved units of kind.
// Returns ErrInsufficientStock, and raises MaterialDepleted, when short.
func (w *Warehouse) Reserve(kind MaterialKind, quantity int) (*Reservation, error) {
	if !kind.IsValid() {
		return nil, &ErrUnknownMaterial{Kind: kind}
	}
	if quantity <= 0 {
		return nil, &ErrInvalidArgument{Field: "quantity", Reason: fmt.Sprintf("must be positive, got %d", quantity)}
	}

	w.mu.Lock()
	available := w.availableUnsafe(kind)
	if available < quantity {
		sink, notify := w.markShortageUnsafe(kind)
		w.mu.Unlock()
		if notify {
			sink.MaterialDepleted(MaterialDepleted{Material: kind})
		}
		return nil, &ErrInsufficientStock{Item: string(kind), Requested: quantity, Available: available}
	}
	w.reserved[kind] += quantity
	w.mu.Unlock()

	return &Reservation{material: kind, quantity: quantity}, nil
}

// Release returns reserved units to the available pool. Idempotent.
func (w *Warehouse) Release(r *Reservation) {
	if r == nil {
		return
	}

	w.mu.Lock()
	if r.settled {
		w.mu.Unlock()
		return
	}
	r.settled = true
	w.reserved[r.material] -= r.quantity
	w.mu.Unlock()

	w.changed.Notify()
}

// Consume removes the reserved units from stock
func (w *Warehouse) Consume(r *Reservation) error {
	if r == nil {
		return &ErrInvalidArgument{Field: "reservation", Reason: "cannot be nil"}
	}

	w.mu.Lock()
	if r.settled {
		w.mu.Unlock()
		return &ErrInsufficientStock{Item: string(r.material), Requested: r.quantity, Available: 0}
	}
	if w.raw[r.material] < r.quantity {
		held := w.raw[r.material]
		w.mu.Unlock()
		return &ErrInsufficientStock{Item: string(r.material), Requested: r.quantity, Available: held}
	}
	r.settled = true
	w.raw[r.material] -= r.quantity
	w.reserved[r.material] -= r.quantity
	sink, depleted := w.checkDepletedUnsafe(r.material)
	w.mu.Unlock()

	if depleted {
		sink.MaterialDepleted(MaterialDepleted{Material: r.material})
	}
	return nil
}

func (w *Warehouse) availableUnsafe(kind MaterialKind) int {
	available := w.raw[kind] - w.reserved[kind]
	if available < 0 {
		return 0
	}
	return available
}

func (w *Warehouse) checkDepletedUnsafe(kind MaterialKind) (EventSink, bool) {
	if w.availableUnsafe(kind) != 0 {
		return nil, false
	}
	return w.markShortageUnsafe(kind)
}

func (w *Warehouse) markShortageUnsafe(kind MaterialKind) (EventSink, bool) {
	if w.shortage[kind] {
		return nil, false
	}
	w.shortage[kind] = true
	return w.sink, true
}

// Finished products

// AddFinishedProduct stores quantity units of product
func (w *Warehouse) AddFinishedProduct(product Product, quantity int) error {
	if quantity < 0 {
		return &ErrInvalidArgument{Field: "quantity", Reason: fmt.Sprintf("must be non-negative, got %d", quantity)}
	}

	w.mu.Lock()
	w.finished[product] += quantity
	w.mu.Unlock()
	return nil
}

// RemoveFinishedProduct takes quantity units of product, all or nothing
func (w *Warehouse) RemoveFinishedProduct(product Product, quantity int) error {
	if quantity < 0 {
		return &ErrInvalidArgument{Field: "quantity", Reason: fmt.Sprintf("must be non-negative, got %d", quantity)}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	held := w.finished[product]
	if held < quantity {
		return &ErrInsufficientStock{Item: product.String(), Requested: quantity, Available: held}
	}
	w.finished[product] = held - quantity
	return nil
}

// FinishedCount returns units of product held
func (w *Warehouse) FinishedCount(product Product) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finished[product]
}

// Snapshots

// RawMaterials returns a copy of raw material quantities
func (w *Warehouse) RawMaterials() map[MaterialKind]int {
	w.mu.Lock()
	defer w.mu.Unlock()

	result := make(map[MaterialKind]int, len(w.raw))
	for kind, qty := range w.raw {
		result[kind] = qty
	}
	return result
}

// FinishedProducts returns a copy of finished product counts
func (w *Warehouse) FinishedProducts() map[Product]int {
	w.mu.Lock()
	defer w.mu.Unlock()

	result := make(map[Product]int, len(w.finished))
	for product, qty := range w.finished {
		result[product] = qty
	}
	return result
}
