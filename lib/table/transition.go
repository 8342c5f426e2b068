package table

import "slices"

// CycleSort advances the sort state for a click on key. Switching to a new
// column starts at Ascending; repeated clicks on the same column cycle
// Ascending, Descending, None.
func CycleSort(current SortConfig, key string) SortConfig {
	if key != current.ColumnKey {
		return SortBy(key, Ascending)
	}
	switch current.Direction {
	case None:
		return SortBy(key, Ascending)
	case Ascending:
		return SortBy(key, Descending)
	default:
		return SortBy(key, None)
	}
}

// SelectionState is a set of selected row ids. IDs iterates in insertion
// order; Equal compares as sets. The zero value is an empty selection.
type SelectionState struct {
	ids []int64
}

// Selection returns a selection holding ids, duplicates dropped.
func Selection(ids ...int64) SelectionState {
	var s SelectionState
	for _, id := range ids {
		if !s.Contains(id) {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

// Contains reports whether id is selected.
func (s SelectionState) Contains(id int64) bool {
	return slices.Contains(s.ids, id)
}

// IDs returns the selected ids in insertion order.
func (s SelectionState) IDs() []int64 {
	return slices.Clone(s.ids)
}

func (s SelectionState) Len() int {
	return len(s.ids)
}

// Equal reports whether both selections hold the same ids.
func (s SelectionState) Equal(o SelectionState) bool {
	if len(s.ids) != len(o.ids) {
		return false
	}
	for _, id := range s.ids {
		if !o.Contains(id) {
			return false
		}
	}
	return true
}

// Clear returns an empty selection.
func (s SelectionState) Clear() SelectionState {
	return SelectionState{}
}

// SelectAll adds every id in ids that is not already selected.
func (s SelectionState) SelectAll(ids []int64) SelectionState {
	out := SelectionState{ids: slices.Clone(s.ids)}
	for _, id := range ids {
		if !out.Contains(id) {
			out.ids = append(out.ids, id)
		}
	}
	return out
}

// DeselectAll removes every id in ids.
func (s SelectionState) DeselectAll(ids []int64) SelectionState {
	out := SelectionState{}
	for _, id := range s.ids {
		if !slices.Contains(ids, id) {
			out.ids = append(out.ids, id)
		}
	}
	return out
}

// ToggleSelection adds id when absent and removes it when present. Other
// ids are untouched and the input is not modified.
func ToggleSelection(current SelectionState, id int64) SelectionState {
	if i := slices.Index(current.ids, id); i >= 0 {
		return SelectionState{ids: slices.Delete(slices.Clone(current.ids), i, i+1)}
	}
	return SelectionState{ids: append(slices.Clone(current.ids), id)}
}

// SetPage moves to requested, clamped into [1, TotalPages] for
// filteredCount rows.
func SetPage(current PaginationState, requested, filteredCount int) PaginationState {
	if current.PageSize <= 0 {
		current.PageSize = DefaultPageSize
	}
	current.TotalPages = TotalPages(filteredCount, current.PageSize)
	current.CurrentPage = min(max(requested, 1), current.TotalPages)
	return current
}
