package components

import "context"

//go:generate hxgrid generate .

// Person is one entry in the staff directory.
type Person struct {
	ID         int64   `grid:"id,id"`
	Name       string  `grid:"name,sortable"`
	Department string  `grid:"department,sortable"`
	Age        int     `grid:"age,sortable"`
	Salary     float64 `grid:"salary,title=Salary (k),sortable"`
	Email      string  `grid:"email"`
	Archived   bool
}

// PersonStore is the storage the people grid needs.
type PersonStore interface {
	Rows(ctx context.Context) ([]Person, error)
	Archive(ids []int64) int
}
