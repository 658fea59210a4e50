package dex

import "github.com/waykidex/node/regid"

// freezeSide returns the symbol and amount PlaceOrder freezes for o:
// coin-side freeze for buy orders, asset-side freeze for sell orders.
// o.CoinAmount is already the ceil-divided frozen amount for buy-limit
// orders (computed at construction time by NewUserBuyLimit).
func freezeSide(o *OrderDetail) (symbol TokenSymbol, amount Amount) {
	if o.OrderSide == OrderSideBuy {
		return o.CoinSymbol, o.CoinAmount
	}
	return o.AssetSymbol, o.AssetAmount
}

// PlaceOrder freezes the relevant balance, persists the OrderDetail,
// and inserts its ActiveOrder index entry. orderID is the placing
// transaction's hash.
func PlaceOrder(o *OrderDetail, orderID TxId, ledger AccountLedger, store OrderStore) error {
	symbol, amount := freezeSide(o)
	if err := ledger.FreezeAvailable(o.UserRegId, symbol, amount); err != nil {
		return err
	}
	if err := store.PutOrderDetail(orderID, o); err != nil {
		return err
	}
	active := &ActiveOrder{
		GenerateType: o.GenerateType,
		TxCord:       o.TxCord,
	}
	return store.PutActiveOrder(orderID, active)
}

// CancelOrder looks up the ActiveOrder, reconstructs the OrderDetail,
// refunds the remaining frozen amount to the owner's available
// balance, and retires both records.
func CancelOrder(orderID TxId, requester regid.RegId, ledger AccountLedger, store OrderStore) error {
	active, ok, err := store.GetActiveOrder(orderID)
	if err != nil {
		return err
	}
	if !ok || active.IsEmpty() {
		return txErr(TxErrStateConflict, "active order not found")
	}
	detail, ok, err := store.GetOrderDetail(orderID)
	if err != nil {
		return err
	}
	if !ok || detail.IsEmpty() {
		return txErr(TxErrStateConflict, "order detail not found for active order")
	}
	if requester != detail.UserRegId {
		return txErr(TxErrBadSignature, "requester does not own this order")
	}

	symbol, original := freezeSide(detail)
	var settled Amount
	if detail.OrderSide == OrderSideBuy {
		settled = active.TotalDealCoinAmount
	} else {
		settled = active.TotalDealAssetAmount
	}
	if settled > original {
		return txErr(TxErrStateConflict, "settled amount exceeds original freeze")
	}
	remaining := original - settled
	if remaining > 0 {
		if err := ledger.UnfreezeToAvailable(detail.UserRegId, symbol, remaining); err != nil {
			return err
		}
	}

	if err := store.DeleteActiveOrder(orderID); err != nil {
		return err
	}
	return store.DeleteOrderDetail(orderID)
}
