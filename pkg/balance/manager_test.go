package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

func TestBalanceManager_GetUnknownAssetIsZero(t *testing.T) {
	m := NewManager()

	bal := m.Get("BTC")
	assert.Equal(t, "BTC", bal.Asset)
	assert.True(t, bal.Total.IsZero())
	assert.True(t, bal.Available.IsZero())
	assert.True(t, bal.Locked.IsZero())
}

func TestBalanceManager_LockAndUnlock(t *testing.T) {
	m := NewManager()
	m.Set("USDT", fixed.FromInt64(1_000, 0))

	require.True(t, m.Lock("USDT", fixed.FromInt64(400, 0)))

	bal := m.Get("USDT")
	assert.True(t, bal.Available.Eq(fixed.FromInt64(600, 0)))
	assert.True(t, bal.Locked.Eq(fixed.FromInt64(400, 0)))
	assert.True(t, bal.Total.Eq(fixed.FromInt64(1_000, 0)))

	// An over-ask fails without touching anything.
	assert.False(t, m.Lock("USDT", fixed.FromInt64(601, 0)))
	assert.True(t, m.Get("USDT").Available.Eq(fixed.FromInt64(600, 0)))

	m.Unlock("USDT", fixed.FromInt64(400, 0))
	bal = m.Get("USDT")
	assert.True(t, bal.Available.Eq(fixed.FromInt64(1_000, 0)))
	assert.True(t, bal.Locked.IsZero())
}

func TestBalanceManager_UnlockClampsOverrun(t *testing.T) {
	m := NewManager()
	m.Set("USDT", fixed.FromInt64(100, 0))
	require.True(t, m.Lock("USDT", fixed.FromInt64(50, 0)))

	// Unlocking more than is locked clamps instead of going negative.
	m.Unlock("USDT", fixed.FromInt64(80, 0))

	bal := m.Get("USDT")
	assert.True(t, bal.Available.Eq(fixed.FromInt64(100, 0)))
	assert.True(t, bal.Locked.IsZero())
	assert.True(t, bal.Total.Eq(fixed.FromInt64(100, 0)))
}

func TestBalanceManager_ApplyFillBuy(t *testing.T) {
	m := NewManager()
	m.Set("USDT", fixed.FromInt64(10_000, 0))

	locked := fixed.FromInt64(3_000, 0) // 0.1 reserved at 30000
	require.True(t, m.Lock("USDT", locked))

	// Fill at a better price: the surplus returns to available.
	amount := fixed.MustFromString("0.1")
	err := m.ApplyFill("BTC", "USDT", common.OrderSideBuy, amount, fixed.FromInt64(29_500, 0), locked)
	require.NoError(t, err)

	usdt := m.Get("USDT")
	assert.True(t, usdt.Locked.IsZero())
	assert.True(t, usdt.Available.Eq(fixed.FromInt64(7_050, 0)))
	assert.True(t, m.Get("BTC").Available.Eq(amount))
}

func TestBalanceManager_ApplyFillSell(t *testing.T) {
	m := NewManager()
	m.Set("BTC", fixed.One)

	amount := fixed.MustFromString("0.4")
	require.True(t, m.Lock("BTC", amount))

	err := m.ApplyFill("BTC", "USDT", common.OrderSideSell, amount, fixed.FromInt64(30_000, 0), amount)
	require.NoError(t, err)

	btc := m.Get("BTC")
	assert.True(t, btc.Locked.IsZero())
	assert.True(t, btc.Available.Eq(fixed.MustFromString("0.6")))
	assert.True(t, m.Get("USDT").Available.Eq(fixed.FromInt64(12_000, 0)))
}

func TestBalanceManager_ApplyFillOverrunLeavesNoTrace(t *testing.T) {
	m := NewManager()
	m.Set("USDT", fixed.FromInt64(3_000, 0))

	locked := fixed.FromInt64(3_000, 0)
	require.True(t, m.Lock("USDT", locked))

	// Fill price above the reservation with nothing left in available.
	amount := fixed.MustFromString("0.1")
	err := m.ApplyFill("BTC", "USDT", common.OrderSideBuy, amount, fixed.FromInt64(31_000, 0), locked)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	usdt := m.Get("USDT")
	assert.True(t, usdt.Locked.Eq(locked))
	assert.True(t, usdt.Available.IsZero())
	assert.True(t, m.Get("BTC").Total.IsZero())
}

func TestBalanceManager_ApplyFillBeyondLockIsInvariantViolation(t *testing.T) {
	m := NewManager()
	m.Set("USDT", fixed.FromInt64(1_000, 0))
	require.True(t, m.Lock("USDT", fixed.FromInt64(100, 0)))

	err := m.ApplyFill("BTC", "USDT", common.OrderSideBuy,
		fixed.One, fixed.FromInt64(500, 0), fixed.FromInt64(500, 0))

	var invariant *InvariantError
	require.ErrorAs(t, err, &invariant)
	assert.Equal(t, "USDT", invariant.Asset)
}

func TestBalanceManager_AllSortedByAsset(t *testing.T) {
	m := NewManager()
	m.Set("USDT", fixed.One)
	m.Set("BTC", fixed.One)
	m.Set("ETH", fixed.One)

	all := m.All()
	require.Len(t, all, 3)
	assert.Equal(t, "BTC", all[0].Asset)
	assert.Equal(t, "ETH", all[1].Asset)
	assert.Equal(t, "USDT", all[2].Asset)
}

func TestBalanceManager_Reset(t *testing.T) {
	m := NewManager()
	m.Set("USDT", fixed.One)
	m.Reset()
	assert.Empty(t, m.All())
}
