package events

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop/internal/models"
)

// stringify mimics what XREADGROUP hands back for values written with XADD.
func stringify(values map[string]any) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)
	item := models.Item{ID: "itm", Name: "Fudge", Quantity: 3, UpdatedAt: at}

	got, err := Decode(stringify(Encode(NewStockEvent(TypeLowStock, item, -2))))
	require.NoError(t, err)
	assert.Equal(t, TypeLowStock, got.Type)
	assert.Equal(t, "itm", got.ItemID)
	assert.Equal(t, "Fudge", got.Name)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, -2, got.Delta)
	assert.True(t, at.Equal(got.At))
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode(map[string]interface{}{"quantity": "1", "delta": "1"})
	assert.Error(t, err)

	_, err = Decode(map[string]interface{}{"type": "purchase", "quantity": "x", "delta": "1"})
	assert.Error(t, err)
}
