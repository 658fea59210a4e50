package dex

import "github.com/waykidex/node/regid"

// AssetRegistry is the external asset/symbol registry consulted by
// validation. A production node supplies its own; package memstore
// ships a static one for tests.
type AssetRegistry interface {
	IsWhitelisted(symbol TokenSymbol) bool
	MaxAmount(symbol TokenSymbol) Amount
	PriceRange(coin, asset TokenSymbol) (min, max Price)
}

// OperatorRegistry is the DEX operator registry: keyed by DexId, only
// the operations the DEX core invokes are named here.
type OperatorRegistry interface {
	Get(dexID uint32) (*DexOperator, bool)
}

// OrderStore is the active-order index plus the originating-tx locator
// the execution and settlement engines need: insert/lookup/delete by
// order id, and re-reading an OrderDetail from its TxCord.
type OrderStore interface {
	PutActiveOrder(orderID TxId, a *ActiveOrder) error
	GetActiveOrder(orderID TxId) (*ActiveOrder, bool, error)
	DeleteActiveOrder(orderID TxId) error

	PutOrderDetail(orderID TxId, o *OrderDetail) error
	GetOrderDetail(orderID TxId) (*OrderDetail, bool, error)
	DeleteOrderDetail(orderID TxId) error
}

// AccountLedger is the external account model's balance-mutation slice
// the DEX core invokes: freeze/unfreeze between available and frozen
// balances, and credit/debit within them.
type AccountLedger interface {
	// FreezeAvailable moves amount from acc's available balance in
	// symbol to its frozen balance. Returns TxErrInsufficientBalance if
	// available is short.
	FreezeAvailable(acc regid.RegId, symbol TokenSymbol, amount Amount) error
	// UnfreezeToAvailable moves amount from acc's frozen balance back to
	// available.
	UnfreezeToAvailable(acc regid.RegId, symbol TokenSymbol, amount Amount) error
	// DebitFrozen removes amount from acc's frozen balance outright
	// (the counterparty side of a settled deal).
	DebitFrozen(acc regid.RegId, symbol TokenSymbol, amount Amount) error
	// CreditAvailable adds amount to acc's available balance.
	CreditAvailable(acc regid.RegId, symbol TokenSymbol, amount Amount) error
}
