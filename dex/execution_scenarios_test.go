package dex_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waykidex/node/dex"
	"github.com/waykidex/node/dex/memstore"
	"github.com/waykidex/node/regid"
)

func TestPlaceOrderFreezesCoinForBuy(t *testing.T) {
	ledger := memstore.NewLedger()
	store := memstore.NewOrderStore()
	user := regid.RegId{Height: 1, Index: 1}
	ledger.Credit(user, "WUSD", 10_000)

	o, err := dex.NewUserBuyLimit(dex.OperatorModeDefault, dex.ReservedDexId, 0, "WUSD", "WICC", 100, dex.PriceBoost, dex.TxCord{BlockHeight: 1}, user)
	require.NoError(t, err)
	orderID := dex.TxId{1, 2, 3}
	require.NoError(t, dex.PlaceOrder(o, orderID, ledger, store))

	require.EqualValues(t, 10_000-o.CoinAmount, ledger.Available(user, "WUSD"))
	require.EqualValues(t, o.CoinAmount, ledger.Frozen(user, "WUSD"))

	active, ok, err := store.GetActiveOrder(orderID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, o.TxCord, active.TxCord)
}

func TestPlaceOrderFreezesAssetForSell(t *testing.T) {
	ledger := memstore.NewLedger()
	store := memstore.NewOrderStore()
	user := regid.RegId{Height: 1, Index: 1}
	ledger.Credit(user, "WICC", 500)

	o, err := dex.NewUserSellLimit(dex.OperatorModeDefault, dex.ReservedDexId, 0, "WUSD", "WICC", 200, dex.PriceBoost, dex.TxCord{}, user)
	require.NoError(t, err)
	orderID := dex.TxId{4, 5, 6}
	require.NoError(t, dex.PlaceOrder(o, orderID, ledger, store))

	require.EqualValues(t, 200, ledger.Frozen(user, "WICC"))
	require.EqualValues(t, 300, ledger.Available(user, "WICC"))
}

func TestPlaceOrderInsufficientBalance(t *testing.T) {
	ledger := memstore.NewLedger()
	store := memstore.NewOrderStore()
	user := regid.RegId{Height: 1, Index: 1}
	// no credit

	o, err := dex.NewUserBuyMarket(dex.OperatorModeDefault, dex.ReservedDexId, 0, "WUSD", "WICC", 100, dex.TxCord{}, user)
	require.NoError(t, err)
	require.Error(t, dex.PlaceOrder(o, dex.TxId{1}, ledger, store), "expected insufficient-balance rejection")
}

func TestCancelOrderRefundsRemainingFreeze(t *testing.T) {
	ledger := memstore.NewLedger()
	store := memstore.NewOrderStore()
	user := regid.RegId{Height: 1, Index: 1}
	ledger.Credit(user, "WICC", 1000)

	o, err := dex.NewUserSellLimit(dex.OperatorModeDefault, dex.ReservedDexId, 0, "WUSD", "WICC", 400, dex.PriceBoost, dex.TxCord{}, user)
	require.NoError(t, err)
	orderID := dex.TxId{7}
	require.NoError(t, dex.PlaceOrder(o, orderID, ledger, store))

	// simulate a partial fill: settlement debits the filled asset from the
	// frozen balance and records it against the active order
	require.NoError(t, ledger.DebitFrozen(user, "WICC", 150))
	active, _, _ := store.GetActiveOrder(orderID)
	active.TotalDealAssetAmount = 150
	require.NoError(t, store.PutActiveOrder(orderID, active))

	require.NoError(t, dex.CancelOrder(orderID, user, ledger, store))
	require.EqualValues(t, 1000-150, ledger.Available(user, "WICC"))
	require.EqualValues(t, 0, ledger.Frozen(user, "WICC"))

	_, ok, _ := store.GetActiveOrder(orderID)
	require.False(t, ok, "expected ActiveOrder to be retired")
	_, ok, _ = store.GetOrderDetail(orderID)
	require.False(t, ok, "expected OrderDetail to be retired")
}

func TestCancelOrderRejectsWrongOwner(t *testing.T) {
	ledger := memstore.NewLedger()
	store := memstore.NewOrderStore()
	owner := regid.RegId{Height: 1, Index: 1}
	stranger := regid.RegId{Height: 2, Index: 2}
	ledger.Credit(owner, "WICC", 1000)

	o, err := dex.NewUserSellLimit(dex.OperatorModeDefault, dex.ReservedDexId, 0, "WUSD", "WICC", 400, dex.PriceBoost, dex.TxCord{}, owner)
	require.NoError(t, err)
	orderID := dex.TxId{8}
	require.NoError(t, dex.PlaceOrder(o, orderID, ledger, store))
	require.Error(t, dex.CancelOrder(orderID, stranger, ledger, store), "expected non-owner cancel to be rejected")
}

func TestCancelOrderNotFound(t *testing.T) {
	ledger := memstore.NewLedger()
	store := memstore.NewOrderStore()
	require.Error(t, dex.CancelOrder(dex.TxId{9}, regid.RegId{Height: 1, Index: 1}, ledger, store), "expected cancel of unknown order to be rejected")
}
