package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_Push(t *testing.T) {
	instance := NewRing[int](3)

	assert.Equal(t, 0, instance.Len())
	assert.Equal(t, 3, instance.Cap())
	assert.Equal(t, 0, instance.Behind(1))

	instance.Push(1)
	instance.Push(2)
	assert.Equal(t, 2, instance.Len())
	assert.Equal(t, 2, instance.Behind(1))
	assert.Equal(t, 1, instance.Behind(2))
	assert.Equal(t, 0, instance.Behind(3))

	instance.Push(3)
	instance.Push(4)
	assert.Equal(t, 3, instance.Len())
	assert.Equal(t, []int{4, 2, 3}, instance.values)
	assert.Equal(t, 4, instance.Behind(1))
	assert.Equal(t, 3, instance.Behind(2))
	assert.Equal(t, 2, instance.Behind(3))
	assert.Equal(t, 0, instance.Behind(4))
	assert.Equal(t, 0, instance.Behind(0))
}

func TestRing_Latest(t *testing.T) {
	instance := NewRing[float32](4)

	dst := make([]float32, 3)
	assert.Equal(t, 0, instance.Latest(dst))
	assert.Equal(t, []float32{0, 0, 0}, dst)

	n, err := instance.Write([]float32{1, 2})
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, instance.Latest(dst))
	assert.Equal(t, []float32{0, 1, 2}, dst)

	_, _ = instance.Write([]float32{3, 4, 5, 6})
	assert.Equal(t, 3, instance.Latest(dst))
	assert.Equal(t, []float32{4, 5, 6}, dst)

	all := make([]float32, 6)
	assert.Equal(t, 4, instance.Latest(all))
	assert.Equal(t, []float32{0, 0, 3, 4, 5, 6}, all)
}

func TestRing_Reset(t *testing.T) {
	instance := NewRing[int](2)
	instance.Push(1)
	instance.Push(2)

	instance.Reset()

	assert.Equal(t, 0, instance.Len())
	assert.Equal(t, 0, instance.Behind(1))
	assert.Equal(t, []int{0, 0}, instance.values)
}

func TestNewRing_capacityIsAtLeastOne(t *testing.T) {
	instance := NewRing[int](0)
	assert.Equal(t, 1, instance.Cap())
}
