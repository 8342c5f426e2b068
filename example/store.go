package main

import (
	"context"
	"sort"
	"sync"

	"github.com/pthm/hxgrid/example/components"
)

// Store is an in-memory staff directory that implements
// components.PersonStore.
type Store struct {
	mu     sync.RWMutex
	people map[int64]*components.Person
	nextID int64
}

// NewStore creates a store with sample data.
func NewStore() *Store {
	s := &Store{
		people: make(map[int64]*components.Person),
		nextID: 1,
	}

	s.Add("Alice Moreau", "Engineering", 34, 92.5, "alice@example.com")
	s.Add("bob Lindqvist", "Sales", 28, 61, "bob@example.com")
	s.Add("Carol Tanaka", "Engineering", 41, 118, "carol@example.com")
	s.Add("Dmitri Volkov", "Support", 25, 48.5, "dmitri@example.com")
	s.Add("Eve Okafor", "Engineering", 30, 87, "eve@example.com")
	s.Add("Farah Haddad", "Finance", 45, 102, "farah@example.com")
	s.Add("Gus Pereira", "Sales", 37, 74, "gus@example.com")
	s.Add("Hana Kowalski", "Support", 31, 52, "hana@example.com")
	s.Add("Ivan Petrov", "Finance", 29, 66.5, "ivan@example.com")
	s.Add("June Park", "Engineering", 26, 79, "june@example.com")
	s.Add("Karl Becker", "Sales", 52, 95, "karl@example.com")
	s.Add("Lena Fischer", "Support", 39, 57.5, "lena@example.com")

	return s
}

// Add creates a person and returns their ID.
func (s *Store) Add(name, department string, age int, salary float64, email string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.people[id] = &components.Person{
		ID:         id,
		Name:       name,
		Department: department,
		Age:        age,
		Salary:     salary,
		Email:      email,
	}
	return id
}

// Rows returns everyone not archived, ordered by ID.
func (s *Store) Rows(ctx context.Context) ([]components.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]components.Person, 0, len(s.people))
	for _, p := range s.people {
		if !p.Archived {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Archive hides the given people from Rows and reports how many changed.
func (s *Store) Archive(ids []int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, id := range ids {
		if p, ok := s.people[id]; ok && !p.Archived {
			p.Archived = true
			n++
		}
	}
	return n
}
