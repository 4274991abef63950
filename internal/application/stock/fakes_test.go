package stock_test

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. El store serializa las transacciones con un mutex y aplica
// las escrituras sobre una copia que solo se confirma si fn no devuelve error,
// imitando el Commit/Rollback del TxRunner real.
// ──────────────────────────────────────────────────────────────────────────────

func pairKey(productID, warehouseID string) string {
	return productID + "|" + warehouseID
}

type memStore struct {
	mu        sync.Mutex
	balances  map[string]entity.StockBalance
	movements []entity.StockMovement
}

func newMemStore() *memStore {
	return &memStore{balances: make(map[string]entity.StockBalance)}
}

// Run implementa stock.TxRunner.
func (s *memStore) Run(ctx context.Context, fn func(
	balances repository.StockBalanceRepository,
	movements repository.StockMovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.begin()
	if err := fn(&memBalanceRepo{tx: tx}, &memMovementRepo{tx: tx}); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

// RunReadOnly implementa la parte de solo lectura: fn corre sobre una copia
// del estado confirmado y cualquier escritura accidental se descarta.
func (s *memStore) RunReadOnly(ctx context.Context, fn func(
	balances repository.StockBalanceRepository,
	movements repository.StockMovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.begin()
	return fn(&memBalanceRepo{tx: tx}, &memMovementRepo{tx: tx})
}

type memTx struct {
	balances  map[string]entity.StockBalance
	movements []entity.StockMovement
}

func (s *memStore) begin() *memTx {
	tx := &memTx{
		balances:  make(map[string]entity.StockBalance, len(s.balances)),
		movements: append([]entity.StockMovement(nil), s.movements...),
	}
	for k, v := range s.balances {
		tx.balances[k] = v
	}
	return tx
}

func (s *memStore) commit(tx *memTx) {
	s.balances = tx.balances
	s.movements = tx.movements
}

// balance devuelve la cantidad confirmada del par (0 si no hay fila).
func (s *memStore) balance(productID, warehouseID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[pairKey(productID, warehouseID)].Quantity
}

// hasRow indica si existe fila de balance para el par.
func (s *memStore) hasRow(productID, warehouseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.balances[pairKey(productID, warehouseID)]
	return ok
}

// movementsFor devuelve los movimientos confirmados del producto en orden de
// secuencia (inserción).
func (s *memStore) movementsFor(productID string) []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.StockMovement
	for _, m := range s.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

// movementCount cuenta los movimientos confirmados del par.
func (s *memStore) movementCount(productID, warehouseID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.movements {
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			n++
		}
	}
	return n
}

type memBalanceRepo struct {
	tx *memTx
}

func (r *memBalanceRepo) Get(_ context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	if b, ok := r.tx.balances[pairKey(productID, warehouseID)]; ok {
		out := b
		return &out, nil
	}
	return &entity.StockBalance{ProductID: productID, WarehouseID: warehouseID}, nil
}

func (r *memBalanceRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	return r.Get(ctx, productID, warehouseID)
}

// ApplyDelta imita la suma aditiva del adaptador real: crea la fila si el par
// no existe y suma delta sobre lo que haya, nunca escribe un absoluto.
func (r *memBalanceRepo) ApplyDelta(_ context.Context, productID, warehouseID string, delta int64) (*entity.StockBalance, error) {
	key := pairKey(productID, warehouseID)
	b, ok := r.tx.balances[key]
	if !ok {
		b = entity.StockBalance{ProductID: productID, WarehouseID: warehouseID}
	}
	b.Quantity += delta
	b.UpdatedAt = time.Now()
	r.tx.balances[key] = b
	out := b
	return &out, nil
}

func (r *memBalanceRepo) Delete(_ context.Context, productID, warehouseID string) error {
	delete(r.tx.balances, pairKey(productID, warehouseID))
	return nil
}

func (r *memBalanceRepo) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.StockBalance, error) {
	var out []*entity.StockBalance
	for _, b := range r.tx.balances {
		if b.WarehouseID == warehouseID {
			copied := b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memBalanceRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockBalance, error) {
	var out []*entity.StockBalance
	for _, b := range r.tx.balances {
		if b.ProductID == productID {
			copied := b
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memMovementRepo struct {
	tx *memTx
}

func (r *memMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	copied := *movement
	// Secuencia creciente por inserción, como el BIGSERIAL real.
	copied.Seq = int64(len(r.tx.movements)) + 1
	r.tx.movements = append(r.tx.movements, copied)
	return nil
}

func (r *memMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	for _, m := range r.tx.movements {
		if m.ID == id {
			out := m
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.tx.movements {
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.WarehouseID != "" && m.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.Reason != "" && m.Reason != filter.Reason {
			continue
		}
		copied := m
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memMovementRepo) SumByProductWarehouse(_ context.Context, productID, warehouseID string) (int64, error) {
	var sum int64
	for _, m := range r.tx.movements {
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			sum += m.Signed()
		}
	}
	return sum, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de catálogo
// ──────────────────────────────────────────────────────────────────────────────

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]entity.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[string]entity.Product)}
}

func (r *memProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		out := p
		return &out, nil
	}
	return nil, nil
}

func (r *memProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SKU == sku {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
	return nil
}

func (r *memProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.products {
		copied := p
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memProductRepo) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Active = active
	r.products[id] = p
	return nil
}

type memWarehouseRepo struct {
	mu         sync.Mutex
	warehouses map[string]entity.Warehouse
}

func newMemWarehouseRepo() *memWarehouseRepo {
	return &memWarehouseRepo{warehouses: make(map[string]entity.Warehouse)}
}

func (r *memWarehouseRepo) Create(_ context.Context, warehouse *entity.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warehouses[warehouse.ID] = *warehouse
	return nil
}

func (r *memWarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.warehouses[id]; ok {
		out := w
		return &out, nil
	}
	return nil, nil
}

func (r *memWarehouseRepo) Update(_ context.Context, warehouse *entity.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warehouses[warehouse.ID] = *warehouse
	return nil
}

func (r *memWarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Warehouse
	for _, w := range r.warehouses {
		copied := w
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memWarehouseRepo) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.warehouses[id]
	if !ok {
		return domain.ErrNotFound
	}
	w.Active = active
	r.warehouses[id] = w
	return nil
}
