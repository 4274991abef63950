package purchase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. El store serializa las transacciones y solo confirma las
// escrituras si fn no devolvió error, imitando Commit/Rollback.
// ──────────────────────────────────────────────────────────────────────────────

func pairKey(productID, warehouseID string) string {
	return productID + "|" + warehouseID
}

type memStore struct {
	mu        sync.Mutex
	balances  map[string]entity.StockBalance
	movements []entity.StockMovement
	orders    map[string]entity.PurchaseOrder
	// products es el catálogo compartido que RunOrder entrega dentro de la tx
	// (el caso de uso solo lo lee).
	products repository.ProductRepository
}

func newMemStore() *memStore {
	return &memStore{
		balances: make(map[string]entity.StockBalance),
		orders:   make(map[string]entity.PurchaseOrder),
	}
}

type memTx struct {
	balances  map[string]entity.StockBalance
	movements []entity.StockMovement
	orders    map[string]entity.PurchaseOrder
}

func (s *memStore) begin() *memTx {
	tx := &memTx{
		balances:  make(map[string]entity.StockBalance, len(s.balances)),
		movements: append([]entity.StockMovement(nil), s.movements...),
		orders:    make(map[string]entity.PurchaseOrder, len(s.orders)),
	}
	for k, v := range s.balances {
		tx.balances[k] = v
	}
	for k, v := range s.orders {
		v.Items = append([]entity.PurchaseOrderItem(nil), v.Items...)
		tx.orders[k] = v
	}
	return tx
}

func (s *memStore) commit(tx *memTx) {
	s.balances = tx.balances
	s.movements = tx.movements
	s.orders = tx.orders
}

// Run implementa stock.TxRunner (el motor inyectado también corre sobre el store).
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

// RunReadOnly corre fn sobre una copia del estado confirmado; las escrituras
// accidentales se descartan.
func (s *memStore) RunReadOnly(ctx context.Context, fn func(
	balances repository.StockBalanceRepository,
	movements repository.StockMovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.begin()
	return fn(&memBalanceRepo{tx: tx}, &memMovementRepo{tx: tx})
}

// RunOrder implementa purchase.OrderTxRunner.
func (s *memStore) RunOrder(ctx context.Context, fn func(
	balances repository.StockBalanceRepository,
	movements repository.StockMovementRepository,
	orders repository.PurchaseOrderRepository,
	products repository.ProductRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.begin()
	if err := fn(&memBalanceRepo{tx: tx}, &memMovementRepo{tx: tx}, &memOrderRepo{tx: tx}, s.products); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

func (s *memStore) balance(productID, warehouseID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[pairKey(productID, warehouseID)].Quantity
}

func (s *memStore) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

// movementProducts devuelve los productos de los movimientos confirmados en
// orden de inserción.
func (s *memStore) movementProducts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.movements))
	for _, m := range s.movements {
		out = append(out, m.ProductID)
	}
	return out
}

func (s *memStore) orderStatus(id string) entity.OrderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id].Status
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
// no existe y suma delta sobre lo que haya.
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

type memOrderRepo struct {
	tx *memTx
}

func (r *memOrderRepo) Create(_ context.Context, order *entity.PurchaseOrder) error {
	copied := *order
	copied.Items = append([]entity.PurchaseOrderItem(nil), order.Items...)
	r.tx.orders[order.ID] = copied
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	if o, ok := r.tx.orders[id]; ok {
		out := o
		out.Items = append([]entity.PurchaseOrderItem(nil), o.Items...)
		return &out, nil
	}
	return nil, nil
}

func (r *memOrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *memOrderRepo) Update(_ context.Context, order *entity.PurchaseOrder) error {
	existing, ok := r.tx.orders[order.ID]
	if !ok {
		return domain.ErrNotFound
	}
	copied := *order
	copied.Items = existing.Items
	r.tx.orders[order.ID] = copied
	return nil
}

func (r *memOrderRepo) ReplaceItems(_ context.Context, orderID string, items []entity.PurchaseOrderItem) error {
	o, ok := r.tx.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Items = append([]entity.PurchaseOrderItem(nil), items...)
	r.tx.orders[orderID] = o
	return nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id string, status entity.OrderStatus, notes string, updatedAt time.Time) error {
	o, ok := r.tx.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	o.Notes = notes
	o.UpdatedAt = updatedAt
	r.tx.orders[id] = o
	return nil
}

func (r *memOrderRepo) List(_ context.Context, status entity.OrderStatus, supplierID string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	for _, o := range r.tx.orders {
		if status != "" && o.Status != status {
			continue
		}
		if supplierID != "" && o.SupplierID != supplierID {
			continue
		}
		copied := o
		copied.Items = append([]entity.PurchaseOrderItem(nil), o.Items...)
		out = append(out, &copied)
	}
	return out, nil
}

// memOrderRepoRoot adapta el store para los accesos fuera de transacción
// (Create y GetByID del caso de uso).
type memOrderRepoRoot struct {
	store *memStore
}

func (r *memOrderRepoRoot) Create(ctx context.Context, order *entity.PurchaseOrder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tx := r.store.begin()
	if err := (&memOrderRepo{tx: tx}).Create(ctx, order); err != nil {
		return err
	}
	r.store.commit(tx)
	return nil
}

func (r *memOrderRepoRoot) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&memOrderRepo{tx: r.store.begin()}).GetByID(ctx, id)
}

func (r *memOrderRepoRoot) GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *memOrderRepoRoot) Update(ctx context.Context, order *entity.PurchaseOrder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tx := r.store.begin()
	if err := (&memOrderRepo{tx: tx}).Update(ctx, order); err != nil {
		return err
	}
	r.store.commit(tx)
	return nil
}

func (r *memOrderRepoRoot) ReplaceItems(ctx context.Context, orderID string, items []entity.PurchaseOrderItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tx := r.store.begin()
	if err := (&memOrderRepo{tx: tx}).ReplaceItems(ctx, orderID, items); err != nil {
		return err
	}
	r.store.commit(tx)
	return nil
}

func (r *memOrderRepoRoot) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus, notes string, updatedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tx := r.store.begin()
	if err := (&memOrderRepo{tx: tx}).UpdateStatus(ctx, id, status, notes, updatedAt); err != nil {
		return err
	}
	r.store.commit(tx)
	return nil
}

func (r *memOrderRepoRoot) List(ctx context.Context, status entity.OrderStatus, supplierID string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&memOrderRepo{tx: r.store.begin()}).List(ctx, status, supplierID, limit, offset)
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
