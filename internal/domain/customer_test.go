package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCustomer_AppendMemo(t *testing.T) {
	c := &Customer{}
	at := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	c.AppendMemo("likes short cuts", at)
	c.AppendMemo("   ", at.Add(time.Hour))
	c.AppendMemo("allergic to shampoo X", at.Add(2*time.Hour))

	assert.Len(t, c.Memos, 2)
	assert.Equal(t, "likes short cuts", c.Memos[0].Text)
	assert.Equal(t, at.Add(2*time.Hour), c.Memos[1].At)
}

func TestCustomer_MergeProfile(t *testing.T) {
	c := &Customer{
		Name: "Kim",
		Pet:  PetProfile{Name: "Coco", Breed: "Poodle", Age: "3"},
	}

	c.MergeProfile("", PetProfile{Breed: "Toy Poodle", Weight: " 4kg "})

	assert.Equal(t, "Kim", c.Name)
	assert.Equal(t, "Coco", c.Pet.Name)
	assert.Equal(t, "Toy Poodle", c.Pet.Breed)
	assert.Equal(t, "3", c.Pet.Age)
	assert.Equal(t, "4kg", c.Pet.Weight)
}

func TestDefaultWeeklySchedule(t *testing.T) {
	w := DefaultWeeklySchedule()

	assert.True(t, w.Day(time.Sunday).Closed)
	for d := time.Monday; d <= time.Saturday; d++ {
		day := w.Day(d)
		assert.False(t, day.Closed)
		assert.Equal(t, DefaultOpenTime, day.Open)
		assert.Equal(t, DefaultCloseTime, day.Close)
	}
}
