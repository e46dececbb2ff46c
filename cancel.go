package qbasher

import "time"

// ═══════════════════════════════════════════════════════════════════════════════
// CANCELLATION: dual op-cost / wall-clock budget
// ═══════════════════════════════════════════════════════════════════════════════
// spec.md §5: two independent budgets checked every 10 candidates — a
// deterministic operation-cost budget (kilo-ops of decompression, skips,
// candidate checks, scorings, term lookups, Bloom checks, each with a
// configured unit cost) and a wall-clock millisecond budget. Grounded on
// original_source/src/qbashq-lib/QBASHQ.h's op_count_t array and
// timeout_kops/timeout_msec fields.
// ═══════════════════════════════════════════════════════════════════════════════

// CostBudget tracks both budgets for one query and reports TimedOut/counts
// for stats.go once the query completes.
type CostBudget struct {
	kopsLimit  int64 // 0 means unlimited
	msecLimit  int64 // 0 means unlimited
	start      time.Time
	opsCharged [numOpKinds]int64
	checks     int
	timedOut   bool
	opUnitCost [numOpKinds]int
}

// NewCostBudget builds a budget from the resolved options, taking per-op
// costs from defaultOpCost (not currently user-overridable per op kind,
// matching spec.md §6's single timeout_kops value).
func NewCostBudget(opts *Options) *CostBudget {
	b := &CostBudget{
		kopsLimit: int64(opts.TimeoutKops),
		msecLimit: int64(opts.TimeoutMsec),
		start:     timeNow(),
	}
	b.opUnitCost = defaultOpCost
	return b
}

// timeNow is the budget's clock (start time and elapsed-time checks), a thin
// indirection so tests can substitute a fake clock; production uses time.Now.
var timeNow = time.Now

// Charge records n operations of kind k and checks both budgets every 10
// candidate-equivalent charges (spec.md §5 "checked every 10 candidates").
func (b *CostBudget) Charge(k OpKind, n int64) {
	if b == nil {
		return
	}
	b.opsCharged[k] += n
	b.checks++
	if b.checks%10 != 0 {
		return
	}
	b.evaluate()
}

func (b *CostBudget) evaluate() {
	if b.timedOut {
		return
	}
	if b.kopsLimit > 0 {
		var totalKops int64
		for k, count := range b.opsCharged {
			totalKops += count * int64(b.opUnitCost[k])
		}
		if totalKops/1000 >= b.kopsLimit {
			b.timedOut = true
			return
		}
	}
	if b.msecLimit > 0 {
		if timeNow().Sub(b.start) >= time.Duration(b.msecLimit)*time.Millisecond {
			b.timedOut = true
		}
	}
}

// Exceeded reports whether either budget had been exceeded at the most
// recent evaluation, which happens on every 10th Charge call.
func (b *CostBudget) Exceeded() bool {
	if b == nil {
		return false
	}
	return b.timedOut
}

// TimedOut reports the final timed_out flag for stats reporting.
func (b *CostBudget) TimedOut() bool {
	if b == nil {
		return false
	}
	return b.timedOut
}

// OpCounts returns a copy of the per-op-kind charge counters.
func (b *CostBudget) OpCounts() [numOpKinds]int64 {
	if b == nil {
		return [numOpKinds]int64{}
	}
	return b.opsCharged
}
