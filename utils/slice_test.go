package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	res := Filter([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 0 })
	assert.Equal(t, []int{2, 4}, res)
}

func TestMap(t *testing.T) {
	res := Map([]int{1, 2, 3}, func(v int) int { return v * 2 })
	assert.Equal(t, []int{2, 4, 6}, res)
}

func TestFind(t *testing.T) {
	v, ok := Find([]string{"a", "b"}, func(s string) bool { return s == "b" })
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = Find([]string{"a"}, func(s string) bool { return s == "c" })
	assert.False(t, ok)
}

func TestGroupBy(t *testing.T) {
	res := GroupBy([]int{1, 2, 3, 4, 5}, func(v int) int { return v % 2 })
	assert.Len(t, res[0], 2)
	assert.Len(t, res[1], 3)
}
