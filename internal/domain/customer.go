package domain

import (
	"strings"
	"time"
)

// MemoEntry is one timestamped note in the customer's append-only memo log
type MemoEntry struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// PetProfile holds the optional profile fields submitted with a booking
type PetProfile struct {
	Name   string `json:"name,omitempty"`
	Breed  string `json:"breed,omitempty"`
	Age    string `json:"age,omitempty"`
	Weight string `json:"weight,omitempty"`
}

// Customer is identified by (ShopID, Phone)
type Customer struct {
	ID     int64
	ShopID int64
	Phone  string
	Name   string
	Pet    PetProfile
	Memos  []MemoEntry

	VisitCount     int
	LastVisit      *time.Time
	FirstVisitDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppendMemo adds a note to the log; blank text is ignored
func (c *Customer) AppendMemo(text string, at time.Time) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.Memos = append(c.Memos, MemoEntry{At: at, Text: text})
}

// MergeProfile overwrites the name and pet fields with non-empty new values
func (c *Customer) MergeProfile(name string, pet PetProfile) {
	c.Name = preferNew(c.Name, name)
	c.Pet.Name = preferNew(c.Pet.Name, pet.Name)
	c.Pet.Breed = preferNew(c.Pet.Breed, pet.Breed)
	c.Pet.Age = preferNew(c.Pet.Age, pet.Age)
	c.Pet.Weight = preferNew(c.Pet.Weight, pet.Weight)
}

func preferNew(old, new string) string {
	if strings.TrimSpace(new) != "" {
		return strings.TrimSpace(new)
	}
	return old
}
