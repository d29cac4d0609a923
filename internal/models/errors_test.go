package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{NewValidationError("name", "required"), "validation_error"},
		{NewNotFoundError("item", "x"), "not_found"},
		{&ForbiddenError{RequiredRole: RoleAdmin}, "forbidden"},
		{&OutOfStockError{Available: 2}, "out_of_stock"},
		{ErrDuplicateAccount, "duplicate_account"},
		{ErrInvalidCredentials, "invalid_credentials"},
		{ErrSessionExpired, "session_expired"},
		{ErrSessionNotFound, "session_not_found"},
		{fmt.Errorf("save item: %w", NewNotFoundError("item", "x")), "not_found"},
		{errors.New("disk full"), "internal_error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Code(tt.err), tt.err.Error())
	}
}

func TestItemStockLevels(t *testing.T) {
	assert.False(t, Item{Quantity: 0}.InStock())
	assert.False(t, Item{Quantity: 0}.LowStock(LowStockThreshold))
	assert.True(t, Item{Quantity: 5}.LowStock(LowStockThreshold))
	assert.False(t, Item{Quantity: 6}.LowStock(LowStockThreshold))
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryIceCream.Valid())
	assert.False(t, Category("Ice Cream").Valid())
}
