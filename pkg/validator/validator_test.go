package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type line struct {
	ProductID uuid.UUID       `validate:"uuid_required"`
	Qty       int             `validate:"gt=0"`
	Price     decimal.Decimal `validate:"gte=0"`
}

type cart struct {
	Phone string `validate:"omitempty,mobile_in"`
	Items []line `validate:"required,min=1,dive"`
}

func TestIsMobile(t *testing.T) {
	assert.True(t, IsMobile("9876543210"))
	assert.True(t, IsMobile("6000000000"))
	assert.False(t, IsMobile("5876543210"))
	assert.False(t, IsMobile("987654321"))
	assert.False(t, IsMobile("98765432100"))
	assert.False(t, IsMobile("98765x3210"))
}

func TestValidateStruct(t *testing.T) {
	ok := cart{Phone: "9876543210", Items: []line{{ProductID: uuid.New(), Qty: 1, Price: decimal.NewFromInt(10)}}}
	assert.Empty(t, ValidateStruct(&ok))

	empty := cart{}
	errs := ValidateStruct(&empty)
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "required", errs[0].Tag)
	}

	bad := cart{Phone: "123", Items: []line{{Qty: 0, Price: decimal.NewFromInt(-1)}}}
	tags := map[string]bool{}
	for _, e := range ValidateStruct(&bad) {
		tags[e.Tag] = true
	}
	assert.True(t, tags["mobile_in"])
	assert.True(t, tags["uuid_required"])
	assert.True(t, tags["gt"])
	assert.True(t, tags["gte"])
}
