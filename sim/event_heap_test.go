package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventHeap_PeekTime_OrdersByTime(t *testing.T) {
	h := NewEventHeap()
	assert.Equal(t, Infinity, h.PeekTime())

	h.Schedule(0, 100)
	h.Schedule(1, 50)
	h.Schedule(2, 150)

	assert.Equal(t, Time(50), h.PeekTime())
	assert.Equal(t, 3, h.Len())
}

func TestEventHeap_Schedule_MovesExistingEntry(t *testing.T) {
	// GIVEN three scheduled instances
	h := NewEventHeap()
	h.Schedule(0, 10)
	h.Schedule(1, 20)
	h.Schedule(2, 30)

	// WHEN the earliest one is pushed back and the latest pulled forward
	h.Schedule(0, 40)
	h.Schedule(2, 5)

	// THEN the heap keeps one entry per instance with the new keys
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, Time(5), h.PeekTime())
	assert.Equal(t, Time(40), h.NextOf(0))
	assert.Equal(t, Time(20), h.NextOf(1))
	assert.Equal(t, Infinity, h.NextOf(99))
}

func TestEventHeap_Imminent_ReturnsTiesInIndexOrder(t *testing.T) {
	h := NewEventHeap()
	for _, idx := range []int{7, 3, 5, 1, 4} {
		h.Schedule(idx, 10)
	}
	h.Schedule(2, 11)
	h.Schedule(6, Infinity)

	assert.Equal(t, []int{1, 3, 4, 5, 7}, h.Imminent(10))
	assert.Nil(t, h.Imminent(11), "11 is not the earliest time")
	assert.Nil(t, h.Imminent(Infinity))
	assert.Equal(t, Time(10), h.PeekTime(), "Imminent does not pop")
}

func TestEventHeap_PassiveEntriesStayAtTheBottom(t *testing.T) {
	h := NewEventHeap()
	h.Schedule(0, Infinity)
	h.Schedule(1, Infinity)

	assert.Equal(t, Infinity, h.PeekTime())
	assert.Nil(t, h.Imminent(Infinity))

	h.Schedule(1, 3)
	assert.Equal(t, []int{1}, h.Imminent(3))
}
