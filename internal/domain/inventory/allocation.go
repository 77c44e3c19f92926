package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BatchSelector picks the batch a consumption of quantity draws from.
// Candidates hold remaining stock. ok is false when no single candidate can cover quantity.
type BatchSelector interface {
	Name() string
	Select(candidates []Batch, quantity decimal.Decimal) (idx int, ok bool)
}

// FIFOSingleBatch selects the oldest batch that can cover the whole quantity.
// A consumption is never split across batches.
type FIFOSingleBatch struct{}

// Name returns the strategy name
func (FIFOSingleBatch) Name() string {
	return "fifo_single_batch"
}

// Select returns the index of the first sufficient batch in FIFO order
func (FIFOSingleBatch) Select(candidates []Batch, quantity decimal.Decimal) (int, bool) {
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fifoLess(&candidates[order[a]], &candidates[order[b]])
	})
	for _, i := range order {
		if candidates[i].QuantityRemaining.GreaterThanOrEqual(quantity) {
			return i, true
		}
	}
	return -1, false
}

// fifoLess orders by supply date, then by insertion time
func fifoLess(a, b *Batch) bool {
	if !a.SupplyDate.Equal(b.SupplyDate) {
		return a.SupplyDate.Before(b.SupplyDate)
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// SortFIFO sorts batches oldest first
func SortFIFO(batches []Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		return fifoLess(&batches[i], &batches[j])
	})
}
