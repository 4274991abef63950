package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

func TestOrderStatus_Transiciones(t *testing.T) {
	cases := []struct {
		from    entity.OrderStatus
		to      entity.OrderStatus
		allowed bool
	}{
		{entity.OrderStatusDraft, entity.OrderStatusConfirmed, true},
		{entity.OrderStatusDraft, entity.OrderStatusCompleted, true}, // recepción directa
		{entity.OrderStatusDraft, entity.OrderStatusCancelled, true},
		{entity.OrderStatusConfirmed, entity.OrderStatusCompleted, true},
		{entity.OrderStatusConfirmed, entity.OrderStatusCancelled, true},
		{entity.OrderStatusConfirmed, entity.OrderStatusDraft, false},
		{entity.OrderStatusCompleted, entity.OrderStatusCancelled, false},
		{entity.OrderStatusCompleted, entity.OrderStatusDraft, false},
		{entity.OrderStatusCancelled, entity.OrderStatusConfirmed, false},
		{entity.OrderStatusCancelled, entity.OrderStatusCompleted, false},
		{entity.OrderStatusDraft, entity.OrderStatusDraft, false},
		{entity.OrderStatusDraft, entity.OrderStatus("bogus"), false},
	}
	for _, tc := range cases {
		got := tc.from.CanTransition(tc.to)
		assert.Equal(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.False(t, entity.OrderStatusDraft.Terminal())
	assert.False(t, entity.OrderStatusConfirmed.Terminal())
	assert.True(t, entity.OrderStatusCompleted.Terminal())
	assert.True(t, entity.OrderStatusCancelled.Terminal())
}

func TestParseOrderStatus(t *testing.T) {
	st, ok := entity.ParseOrderStatus("confirmed")
	assert.True(t, ok)
	assert.Equal(t, entity.OrderStatusConfirmed, st)

	_, ok = entity.ParseOrderStatus("shipped")
	assert.False(t, ok)
}

func TestPurchaseOrder_Total(t *testing.T) {
	order := &entity.PurchaseOrder{
		Items: []entity.PurchaseOrderItem{
			{Quantity: 10, Price: decimal.RequireFromString("2.50")},
			{Quantity: 3, Price: decimal.RequireFromString("1.10")},
		},
	}
	assert.True(t, order.Total().Equal(decimal.RequireFromString("28.30")))
}
