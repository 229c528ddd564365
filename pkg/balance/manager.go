package balance

import (
	"log/slog"
	"sort"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

const managerComponentName = "balance.manager"

type entry struct {
	available fixed.Point
	locked    fixed.Point
}

// Manager owns all asset balances. Every quantity is exact decimal and the
// invariant total == available + locked holds after every operation.
//
// All mutation flows through the environment's tick loop; there is no
// concurrent writer, so the manager carries no lock.
type Manager struct {
	entries map[string]*entry
}

func NewManager() *Manager {
	return &Manager{
		entries: make(map[string]*entry),
	}
}

func (m *Manager) entryFor(asset string) *entry {
	e, ok := m.entries[asset]
	if !ok {
		e = &entry{available: fixed.Zero, locked: fixed.Zero}
		m.entries[asset] = e
	}
	return e
}

// Get returns the balance for an asset, zero-initialized for unseen assets.
func (m *Manager) Get(asset string) common.Balance {
	e, ok := m.entries[asset]
	if !ok {
		return common.Balance{
			Asset:     asset,
			Total:     fixed.Zero,
			Available: fixed.Zero,
			Locked:    fixed.Zero,
		}
	}
	return common.Balance{
		Asset:     asset,
		Total:     e.available.Add(e.locked),
		Available: e.available,
		Locked:    e.locked,
	}
}

// All returns a snapshot of every known balance, sorted by asset for
// deterministic iteration.
func (m *Manager) All() []common.Balance {
	assets := make([]string, 0, len(m.entries))
	for asset := range m.entries {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	balances := make([]common.Balance, 0, len(assets))
	for _, asset := range assets {
		balances = append(balances, m.Get(asset))
	}
	return balances
}

// Set replaces the available balance for an asset. Used for initial funding;
// any locked amount is left untouched.
func (m *Manager) Set(asset string, amount fixed.Point) {
	m.entryFor(asset).available = amount
}

// Lock atomically checks and reserves available balance. On failure nothing
// is mutated.
func (m *Manager) Lock(asset string, amount fixed.Point) bool {
	e := m.entryFor(asset)
	if e.available.Lt(amount) {
		return false
	}
	e.available = e.available.Sub(amount)
	e.locked = e.locked.Add(amount)
	return true
}

// Unlock moves locked balance back to available. An attempt to unlock more
// than is locked indicates a bookkeeping bug upstream; the amount is clamped
// and a warning logged rather than corrupting the invariant.
func (m *Manager) Unlock(asset string, amount fixed.Point) {
	e := m.entryFor(asset)
	if amount.Gt(e.locked) {
		slog.Warn("unlock exceeds locked balance, clamping",
			"component", managerComponentName,
			"asset", asset,
			"requested", amount,
			"locked", e.locked)
		amount = e.locked
	}
	e.locked = e.locked.Sub(amount)
	e.available = e.available.Add(amount)
}

// ApplyFill settles one execution. For a buy, lockedAmount of quote is
// released and consumed at amount*fillPrice while amount of base is credited;
// for a sell, amount of base is released and consumed while amount*fillPrice
// of quote is credited. No mutation happens unless the whole settlement fits,
// so a failed settlement leaves balances untouched.
func (m *Manager) ApplyFill(base, quote string, side common.OrderSide, amount, fillPrice, lockedAmount fixed.Point) error {
	switch side {
	case common.OrderSideBuy:
		quoteEntry := m.entryFor(quote)
		if lockedAmount.Gt(quoteEntry.locked) {
			return &InvariantError{
				Asset:   quote,
				Op:      "apply-fill",
				Detail:  "fill consumes more than the locked amount",
				Balance: m.Get(quote),
			}
		}
		cost := amount.Mul(fillPrice)
		newAvailable := quoteEntry.available.Add(lockedAmount).Sub(cost)
		if newAvailable.IsNeg() {
			return ErrInsufficientBalance
		}
		quoteEntry.locked = quoteEntry.locked.Sub(lockedAmount)
		quoteEntry.available = newAvailable
		m.entryFor(base).available = m.entryFor(base).available.Add(amount)

	case common.OrderSideSell:
		baseEntry := m.entryFor(base)
		if amount.Gt(baseEntry.locked) {
			return &InvariantError{
				Asset:   base,
				Op:      "apply-fill",
				Detail:  "fill consumes more than the locked amount",
				Balance: m.Get(base),
			}
		}
		baseEntry.locked = baseEntry.locked.Sub(amount)
		proceeds := amount.Mul(fillPrice)
		m.entryFor(quote).available = m.entryFor(quote).available.Add(proceeds)
	}

	return m.check(base, quote)
}

// check verifies the non-negativity half of the balance invariant; the
// total == available + locked half is structural, totals are derived.
func (m *Manager) check(assets ...string) error {
	for _, asset := range assets {
		e, ok := m.entries[asset]
		if !ok {
			continue
		}
		if e.available.IsNeg() || e.locked.IsNeg() {
			return &InvariantError{
				Asset:   asset,
				Op:      "check",
				Detail:  "negative balance component",
				Balance: m.Get(asset),
			}
		}
	}
	return nil
}

// Reset drops every balance.
func (m *Manager) Reset() {
	m.entries = make(map[string]*entry)
}
