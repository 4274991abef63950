package purchase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/purchase"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

const (
	testSupplier  = "55555555-0000-0000-0000-000000000001"
	testSupplier2 = "55555555-0000-0000-0000-000000000002"
	testProductA  = "11111111-0000-0000-0000-000000000001"
	testProductB  = "11111111-0000-0000-0000-000000000002"
	testProductC  = "11111111-0000-0000-0000-000000000003" // otro proveedor
	testWarehouse = "aaaaaaaa-0000-0000-0000-000000000001"
	testInactive  = "aaaaaaaa-0000-0000-0000-000000000002"
	testActor     = "user-1"
)

func newTestUseCase(t *testing.T) (*purchase.UseCase, *memStore, *memProductRepo, *memWarehouseRepo) {
	t.Helper()
	store := newMemStore()
	products := newMemProductRepo()
	warehouses := newMemWarehouseRepo()
	store.products = products

	ctx := context.Background()
	require.NoError(t, products.Create(ctx, &entity.Product{
		ID: testProductA, SKU: "SKU-A", Name: "Tuerca", SupplierID: testSupplier, Active: true,
	}))
	require.NoError(t, products.Create(ctx, &entity.Product{
		ID: testProductB, SKU: "SKU-B", Name: "Arandela", SupplierID: testSupplier, Active: true,
	}))
	require.NoError(t, products.Create(ctx, &entity.Product{
		ID: testProductC, SKU: "SKU-C", Name: "Perno", SupplierID: testSupplier2, Active: true,
	}))
	require.NoError(t, warehouses.Create(ctx, &entity.Warehouse{
		ID: testWarehouse, Name: "Bodega Central", Active: true,
	}))
	require.NoError(t, warehouses.Create(ctx, &entity.Warehouse{
		ID: testInactive, Name: "Bodega Cerrada", Active: false,
	}))

	engine := stock.NewEngine(store, products, warehouses, nil)
	uc := purchase.NewUseCase(store, engine, &memOrderRepoRoot{store: store}, products, warehouses, nil)
	return uc, store, products, warehouses
}

func draftOrder(t *testing.T, uc *purchase.UseCase, items ...purchase.ItemInput) *entity.PurchaseOrder {
	t.Helper()
	order, err := uc.Create(context.Background(), purchase.CreateInput{
		Actor:     testActor,
		Items:     items,
		OrderDate: time.Now(),
		Status:    entity.OrderStatusDraft,
	})
	require.NoError(t, err)
	return order
}

func item(productID string, quantity int64, price string) purchase.ItemInput {
	return purchase.ItemInput{
		ProductID: productID,
		Quantity:  quantity,
		Price:     decimal.RequireFromString(price),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create / Update
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ResuelveProveedorDesdeLineas(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	order := draftOrder(t, uc, item(testProductA, 10, "2.50"), item(testProductB, 4, "1.00"))
	assert.Equal(t, entity.OrderStatusDraft, order.Status)
	assert.Equal(t, testSupplier, order.SupplierID, "el proveedor debe derivarse de los productos")
	assert.Len(t, order.Items, 2)
	assert.True(t, order.Total().Equal(decimal.RequireFromString("29.00")))
}

func TestCreate_RechazaProveedoresMezclados(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	_, err := uc.Create(context.Background(), purchase.CreateInput{
		Items:  []purchase.ItemInput{item(testProductA, 1, "1.00"), item(testProductC, 1, "1.00")},
		Status: entity.OrderStatusDraft,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"una orden va dirigida a un solo proveedor")
}

func TestCreate_RechazaEntradasInvalidas(t *testing.T) {
	uc, _, products, _ := newTestUseCase(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, purchase.CreateInput{Items: nil, Status: entity.OrderStatusDraft})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = uc.Create(ctx, purchase.CreateInput{
		Items:  []purchase.ItemInput{item(testProductA, 0, "1.00")},
		Status: entity.OrderStatusDraft,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = uc.Create(ctx, purchase.CreateInput{
		Items:  []purchase.ItemInput{item(testProductA, 1, "1.00")},
		Status: entity.OrderStatusCompleted,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no se nace en estado terminal")

	require.NoError(t, products.SetActive(ctx, testProductA, false))
	_, err = uc.Create(ctx, purchase.CreateInput{
		Items:  []purchase.ItemInput{item(testProductA, 1, "1.00")},
		Status: entity.OrderStatusDraft,
	})
	assert.ErrorIs(t, err, domain.ErrInactiveProduct)
}

func TestUpdate_ConfirmaYReemplazaLineas(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	order := draftOrder(t, uc, item(testProductA, 10, "2.00"))

	updated, err := uc.Update(context.Background(), order.ID, purchase.UpdateInput{
		Actor:     testActor,
		Items:     []purchase.ItemInput{item(testProductB, 3, "5.00")},
		OrderDate: order.OrderDate,
		Status:    entity.OrderStatusConfirmed,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, updated.Status)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, testProductB, updated.Items[0].ProductID)
}

func TestUpdate_OrdenTerminalInmutable(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	order := draftOrder(t, uc, item(testProductA, 1, "1.00"))

	_, err := uc.Cancel(context.Background(), order.ID, "proveedor sin stock", testActor)
	require.NoError(t, err)

	_, err = uc.Update(context.Background(), order.ID, purchase.UpdateInput{
		Items:  []purchase.ItemInput{item(testProductA, 2, "1.00")},
		Status: entity.OrderStatusDraft,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestUpdate_NoRegresaDeConfirmedADraft(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	order := draftOrder(t, uc, item(testProductA, 1, "1.00"))

	_, err := uc.Update(context.Background(), order.ID, purchase.UpdateInput{
		Items:  []purchase.ItemInput{item(testProductA, 1, "1.00")},
		Status: entity.OrderStatusConfirmed,
	})
	require.NoError(t, err)

	_, err = uc.Update(context.Background(), order.ID, purchase.UpdateInput{
		Items:  []purchase.ItemInput{item(testProductA, 1, "1.00")},
		Status: entity.OrderStatusDraft,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Complete
// ──────────────────────────────────────────────────────────────────────────────

func TestComplete_RecibeTodasLasLineas(t *testing.T) {
	uc, store, _, _ := newTestUseCase(t)
	order := draftOrder(t, uc, item(testProductA, 10, "2.00"), item(testProductB, 5, "1.00"))

	completed, err := uc.Complete(context.Background(), order.ID, testWarehouse, testActor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, completed.Status)

	assert.Equal(t, int64(10), store.balance(testProductA, testWarehouse))
	assert.Equal(t, int64(5), store.balance(testProductB, testWarehouse))
	assert.Equal(t, 2, store.movementCount(), "una recepción por línea")
}

func TestComplete_RecibeLineasEnOrdenFijoDeProducto(t *testing.T) {
	// Las líneas se reciben ordenadas por producto sin importar cómo vinieron
	// en la orden: mismo orden global de bloqueo que usan los traslados, para
	// que dos terminaciones concurrentes con productos compartidos no se
	// esperen en cruz.
	uc, store, _, _ := newTestUseCase(t)
	order := draftOrder(t, uc, item(testProductB, 5, "1.00"), item(testProductA, 10, "2.00"))

	_, err := uc.Complete(context.Background(), order.ID, testWarehouse, testActor)
	require.NoError(t, err)

	assert.Equal(t, []string{testProductA, testProductB}, store.movementProducts(),
		"las recepciones deben aplicarse en orden ascendente de producto")
	assert.Equal(t, int64(10), store.balance(testProductA, testWarehouse))
	assert.Equal(t, int64(5), store.balance(testProductB, testWarehouse))
}

func TestComplete_DesdeDraftDirecto(t *testing.T) {
	// La recepción directa sin confirmación previa está permitida.
	uc, store, _, _ := newTestUseCase(t)
	order := draftOrder(t, uc, item(testProductA, 3, "1.00"))

	completed, err := uc.Complete(context.Background(), order.ID, testWarehouse, testActor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, completed.Status)
	assert.Equal(t, int64(3), store.balance(testProductA, testWarehouse))
}

func TestComplete_LineaFallidaNoAplicaNada(t *testing.T) {
	uc, store, products, _ := newTestUseCase(t)
	order := draftOrder(t, uc, item(testProductA, 10, "2.00"), item(testProductB, 5, "1.00"))

	// El segundo producto se desactiva después de crear la orden: la
	// terminación debe fallar completa, sin recepciones parciales.
	require.NoError(t, products.SetActive(context.Background(), testProductB, false))

	_, err := uc.Complete(context.Background(), order.ID, testWarehouse, testActor)
	require.ErrorIs(t, err, domain.ErrInactiveProduct)

	assert.Equal(t, entity.OrderStatusDraft, store.orderStatus(order.ID), "la orden conserva su estado")
	assert.Equal(t, int64(0), store.balance(testProductA, testWarehouse), "ninguna línea debe aplicarse")
	assert.Equal(t, 0, store.movementCount())
}

func TestComplete_DosVecesFalla(t *testing.T) {
	uc, store, _, _ := newTestUseCase(t)
	order := draftOrder(t, uc, item(testProductA, 4, "1.00"))

	_, err := uc.Complete(context.Background(), order.ID, testWarehouse, testActor)
	require.NoError(t, err)

	_, err = uc.Complete(context.Background(), order.ID, testWarehouse, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Equal(t, int64(4), store.balance(testProductA, testWarehouse), "no debe duplicarse la recepción")
}

func TestComplete_BodegaInactivaRechazada(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	order := draftOrder(t, uc, item(testProductA, 1, "1.00"))

	_, err := uc.Complete(context.Background(), order.ID, testInactive, testActor)
	assert.ErrorIs(t, err, domain.ErrInactiveWarehouse)
}

func TestComplete_OrdenInexistente(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	_, err := uc.Complete(context.Background(), "no-existe", testWarehouse, testActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancel
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_ExigeNota(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	order := draftOrder(t, uc, item(testProductA, 1, "1.00"))

	_, err := uc.Cancel(context.Background(), order.ID, "", testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la nota de cancelación es obligatoria")
}

func TestCancel_GuardaNotaYNoTocaStock(t *testing.T) {
	uc, store, _, _ := newTestUseCase(t)
	order := draftOrder(t, uc, item(testProductA, 10, "2.00"))

	cancelled, err := uc.Cancel(context.Background(), order.ID, "precio renegociado", testActor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, "precio renegociado", cancelled.Notes)
	assert.Equal(t, int64(0), store.balance(testProductA, testWarehouse))
	assert.Equal(t, 0, store.movementCount())
}

func TestCancel_OrdenCompletadaFalla(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	order := draftOrder(t, uc, item(testProductA, 1, "1.00"))

	_, err := uc.Complete(context.Background(), order.ID, testWarehouse, testActor)
	require.NoError(t, err)

	_, err = uc.Cancel(context.Background(), order.ID, "tarde", testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetByID_NoEncontrada(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	_, err := uc.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_FiltraPorEstado(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	ctx := context.Background()

	first := draftOrder(t, uc, item(testProductA, 1, "1.00"))
	second := draftOrder(t, uc, item(testProductB, 2, "1.00"))
	_, err := uc.Cancel(ctx, second.ID, "duplicada", testActor)
	require.NoError(t, err)

	drafts, err := uc.List(ctx, entity.OrderStatusDraft, "", 20, 0)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, first.ID, drafts[0].ID)

	cancelled, err := uc.List(ctx, entity.OrderStatusCancelled, "", 20, 0)
	require.NoError(t, err)
	assert.Len(t, cancelled, 1)
}
