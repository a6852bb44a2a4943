package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPurchaseOrderAllReceived(t *testing.T) {
	var empty PurchaseOrder
	assert.False(t, empty.AllReceived())

	po := PurchaseOrder{Items: []PurchaseOrderItem{{Received: true, OrderQty: 2}, {Received: false, OrderQty: 3}}}
	assert.False(t, po.AllReceived())
	assert.Equal(t, 5, po.OrderedQty())

	po.Items[1].Received = true
	assert.True(t, po.AllReceived())
}

func TestSaleItemLineTotal(t *testing.T) {
	it := SaleItem{Qty: 3, SellingPrice: decimal.RequireFromString("199.50")}
	assert.True(t, it.LineTotal().Equal(decimal.RequireFromString("598.50")))
}

func TestUserPassword(t *testing.T) {
	var u User
	assert.NoError(t, u.SetPassword("secret1"))
	assert.True(t, u.CheckPassword("secret1"))
	assert.False(t, u.CheckPassword("secret2"))
	assert.Equal(t, "", u.RoleCode())
}

func TestProductIsLowStock(t *testing.T) {
	p := Product{Stock: 1, MinStock: 5}
	assert.True(t, p.IsLowStock())
	p.Stock = 5
	assert.False(t, p.IsLowStock())
}
