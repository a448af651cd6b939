package adapter

import (
	"context"
	"sync"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/service/order/domain/port"
)

// Backend operations that faults can be injected into.
const (
	OpValidate = "validate"
	OpIncrease = "increase"
	OpDecrease = "decrease"
)

type faultKey struct {
	op        string
	productID int64
}

type fault struct {
	err       error
	remaining int // < 0 means every call
}

// InventoryMemoryAdapter is an in-process port.InventoryBackend for local runs
// and tests. Faults make chosen calls fail before touching stock.
type InventoryMemoryAdapter struct {
	mu       sync.Mutex
	products map[int64]*port.Product
	faults   map[faultKey]*fault
	calls    map[faultKey]int
}

func NewInventoryMemoryAdapter(products ...port.Product) *InventoryMemoryAdapter {
	a := &InventoryMemoryAdapter{
		products: make(map[int64]*port.Product),
		faults:   make(map[faultKey]*fault),
		calls:    make(map[faultKey]int),
	}
	for _, p := range products {
		p := p
		a.products[p.ID] = &p
	}
	return a
}

// Fail makes the next times calls of op on productID return err; times < 0 fails forever.
func (a *InventoryMemoryAdapter) Fail(op string, productID int64, err error, times int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := faultKey{op, productID}
	if times == 0 {
		delete(a.faults, key)
		return
	}
	a.faults[key] = &fault{err: err, remaining: times}
}

// Calls counts every invocation of op on productID, failed ones included.
func (a *InventoryMemoryAdapter) Calls(op string, productID int64) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[faultKey{op, productID}]
}

// Quantity returns the current stock, or -1 for unknown products.
func (a *InventoryMemoryAdapter) Quantity(productID int64) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.products[productID]; ok {
		return p.Quantity
	}
	return -1
}

func (a *InventoryMemoryAdapter) ValidateStock(_ context.Context, productID int64, quantity int) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.injected(OpValidate, productID); err != nil {
		return false, err
	}
	p, ok := a.products[productID]
	return ok && quantity > 0 && p.Quantity >= quantity, nil
}

func (a *InventoryMemoryAdapter) Increase(_ context.Context, productID int64, amount int) (*port.Product, error) {
	return a.adjust(OpIncrease, productID, amount)
}

func (a *InventoryMemoryAdapter) Decrease(_ context.Context, productID int64, amount int) (*port.Product, error) {
	return a.adjust(OpDecrease, productID, -amount)
}

func (a *InventoryMemoryAdapter) adjust(op string, productID int64, delta int) (*port.Product, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.injected(op, productID); err != nil {
		return nil, err
	}
	p, ok := a.products[productID]
	if !ok {
		return nil, apperr.ProductNotFound(productID)
	}
	if p.Quantity+delta < 0 {
		return nil, apperr.InsufficientStock(productID, p.Quantity, -delta)
	}
	p.Quantity += delta
	p.Version++
	out := *p
	return &out, nil
}

func (a *InventoryMemoryAdapter) injected(op string, productID int64) error {
	key := faultKey{op, productID}
	a.calls[key]++
	f, ok := a.faults[key]
	if !ok {
		return nil
	}
	if f.remaining > 0 {
		f.remaining--
		if f.remaining == 0 {
			delete(a.faults, key)
		}
	}
	return f.err
}
