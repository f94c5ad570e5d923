package schedule

import (
	"sort"

	"knwidget/internal/model"
)

// Layout assigns a column placement to every slot so that same-day
// overlapping classes render side by side. Days are laid out independently;
// the result preserves the input order.
//
// Per day:
//
//  1. Sort the day's slots by StartMinute (stable, so equal starts keep
//     input order).
//  2. Sweep in sorted order keeping the set of still-active slots; each
//     slot takes the smallest column index not held by an active slot
//     (greedy interval coloring, which is optimal for intervals).
//  3. ColumnCount per slot is 1 + the maximum column index among the slot
//     itself and every slot directly overlapping it, i.e. the width of the
//     live cluster touching it. Deliberately not transitive: in a chain
//     A-B, B-C with A,C disjoint, C only widens to B's cluster.
//
// Interval semantics are half-open: end == other start is not an overlap.
// Layout is pure and deterministic for a given input sequence.
func Layout(slots []model.ClassSlot) []model.LaidOutSlot {
	out := make([]model.LaidOutSlot, len(slots))
	for i, s := range slots {
		out[i] = model.LaidOutSlot{ClassSlot: s, ColumnIndex: 0, ColumnCount: 1}
	}

	byDay := make(map[int][]int)
	for i, s := range slots {
		byDay[s.Day] = append(byDay[s.Day], i)
	}

	for _, idxs := range byDay {
		layoutDay(out, idxs)
	}
	return out
}

// layoutDay assigns ColumnIndex/ColumnCount for one day's slots, given
// their indices into the shared output slice.
func layoutDay(out []model.LaidOutSlot, idxs []int) {
	order := make([]int, len(idxs))
	copy(order, idxs)
	sort.SliceStable(order, func(a, b int) bool {
		return out[order[a]].StartMinute < out[order[b]].StartMinute
	})

	// Greedy sweep: active holds indices whose interval is still open at
	// the current slot's start.
	active := make([]int, 0, len(order))
	for _, i := range order {
		cur := out[i]

		kept := active[:0]
		for _, j := range active {
			if out[j].EndMinute > cur.StartMinute {
				kept = append(kept, j)
			}
		}
		active = kept

		used := make(map[int]bool, len(active))
		for _, j := range active {
			used[out[j].ColumnIndex] = true
		}
		col := 0
		for used[col] {
			col++
		}
		out[i].ColumnIndex = col
		active = append(active, i)
	}

	// Widest-cluster width: all-pairs rescan over the day.
	for _, i := range order {
		maxCol := out[i].ColumnIndex
		for _, j := range order {
			if j == i {
				continue
			}
			if out[i].Overlaps(out[j].ClassSlot) && out[j].ColumnIndex > maxCol {
				maxCol = out[j].ColumnIndex
			}
		}
		out[i].ColumnCount = maxCol + 1
	}
}
