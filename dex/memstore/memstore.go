// Package memstore provides in-memory reference implementations of
// dex.AccountLedger, dex.AssetRegistry, dex.OperatorRegistry, and
// dex.OrderStore, for unit tests and local experimentation. None of
// these are meant for node production use.
package memstore

import (
	"sync"

	"github.com/waykidex/node/dex"
	"github.com/waykidex/node/regid"
)

type balance struct {
	available dex.Amount
	frozen    dex.Amount
}

// Ledger is a mutex-guarded, map-backed dex.AccountLedger.
type Ledger struct {
	mu       sync.Mutex
	balances map[regid.RegId]map[dex.TokenSymbol]*balance
}

func NewLedger() *Ledger {
	return &Ledger{balances: make(map[regid.RegId]map[dex.TokenSymbol]*balance)}
}

func (l *Ledger) entry(acc regid.RegId, symbol dex.TokenSymbol) *balance {
	bySymbol, ok := l.balances[acc]
	if !ok {
		bySymbol = make(map[dex.TokenSymbol]*balance)
		l.balances[acc] = bySymbol
	}
	b, ok := bySymbol[symbol]
	if !ok {
		b = &balance{}
		bySymbol[symbol] = b
	}
	return b
}

// Credit seeds acc's available balance in symbol, for test fixture setup.
func (l *Ledger) Credit(acc regid.RegId, symbol dex.TokenSymbol, amount dex.Amount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entry(acc, symbol).available += amount
}

// Available returns acc's current available balance in symbol.
func (l *Ledger) Available(acc regid.RegId, symbol dex.TokenSymbol) dex.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entry(acc, symbol).available
}

// Frozen returns acc's current frozen balance in symbol.
func (l *Ledger) Frozen(acc regid.RegId, symbol dex.TokenSymbol) dex.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entry(acc, symbol).frozen
}

func (l *Ledger) FreezeAvailable(acc regid.RegId, symbol dex.TokenSymbol, amount dex.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.entry(acc, symbol)
	if b.available < amount {
		return &dex.TxError{Code: dex.TxErrInsufficientBalance, Msg: "available balance too low to freeze"}
	}
	b.available -= amount
	b.frozen += amount
	return nil
}

func (l *Ledger) UnfreezeToAvailable(acc regid.RegId, symbol dex.TokenSymbol, amount dex.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.entry(acc, symbol)
	if b.frozen < amount {
		return &dex.TxError{Code: dex.TxErrStateConflict, Msg: "frozen balance too low to unfreeze"}
	}
	b.frozen -= amount
	b.available += amount
	return nil
}

func (l *Ledger) DebitFrozen(acc regid.RegId, symbol dex.TokenSymbol, amount dex.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.entry(acc, symbol)
	if b.frozen < amount {
		return &dex.TxError{Code: dex.TxErrStateConflict, Msg: "frozen balance too low to debit"}
	}
	b.frozen -= amount
	return nil
}

func (l *Ledger) CreditAvailable(acc regid.RegId, symbol dex.TokenSymbol, amount dex.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entry(acc, symbol).available += amount
	return nil
}

// AssetEntry describes one whitelisted symbol's static bounds.
type AssetEntry struct {
	MaxAmount dex.Amount
}

// PairRange describes a coin/asset pair's allowed limit-order price band.
type PairRange struct {
	Min, Max dex.Price
}

// Registry is a static, map-backed dex.AssetRegistry for tests.
type Registry struct {
	Assets map[dex.TokenSymbol]AssetEntry
	Ranges map[[2]dex.TokenSymbol]PairRange
}

func NewRegistry() *Registry {
	return &Registry{
		Assets: make(map[dex.TokenSymbol]AssetEntry),
		Ranges: make(map[[2]dex.TokenSymbol]PairRange),
	}
}

// Whitelist registers symbol with the given per-tx maximum amount (0
// means unbounded).
func (r *Registry) Whitelist(symbol dex.TokenSymbol, maxAmount dex.Amount) {
	r.Assets[symbol] = AssetEntry{MaxAmount: maxAmount}
}

// SetPriceRange registers the allowed limit price band for a coin/asset
// pair.
func (r *Registry) SetPriceRange(coin, asset dex.TokenSymbol, min, max dex.Price) {
	r.Ranges[[2]dex.TokenSymbol{coin, asset}] = PairRange{Min: min, Max: max}
}

func (r *Registry) IsWhitelisted(symbol dex.TokenSymbol) bool {
	_, ok := r.Assets[symbol]
	return ok
}

func (r *Registry) MaxAmount(symbol dex.TokenSymbol) dex.Amount {
	return r.Assets[symbol].MaxAmount
}

func (r *Registry) PriceRange(coin, asset dex.TokenSymbol) (min, max dex.Price) {
	pr, ok := r.Ranges[[2]dex.TokenSymbol{coin, asset}]
	if !ok {
		return 0, 0
	}
	return pr.Min, pr.Max
}

// Operators is a static, map-backed dex.OperatorRegistry for tests.
type Operators struct {
	byDexID map[uint32]*dex.DexOperator
}

func NewOperators() *Operators {
	return &Operators{byDexID: make(map[uint32]*dex.DexOperator)}
}

func (o *Operators) Put(op *dex.DexOperator) {
	o.byDexID[op.DexId] = op
}

func (o *Operators) Get(dexID uint32) (*dex.DexOperator, bool) {
	op, ok := o.byDexID[dexID]
	return op, ok
}

// OrderStore is a mutex-guarded, map-backed dex.OrderStore.
type OrderStore struct {
	mu      sync.Mutex
	active  map[dex.TxId]*dex.ActiveOrder
	details map[dex.TxId]*dex.OrderDetail
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		active:  make(map[dex.TxId]*dex.ActiveOrder),
		details: make(map[dex.TxId]*dex.OrderDetail),
	}
}

func (s *OrderStore) PutActiveOrder(orderID dex.TxId, a *dex.ActiveOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.active[orderID] = &cp
	return nil
}

func (s *OrderStore) GetActiveOrder(orderID dex.TxId) (*dex.ActiveOrder, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.active[orderID]
	if !ok {
		return nil, false, nil
	}
	cp := *a
	return &cp, true, nil
}

func (s *OrderStore) DeleteActiveOrder(orderID dex.TxId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, orderID)
	return nil
}

func (s *OrderStore) PutOrderDetail(orderID dex.TxId, o *dex.OrderDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.details[orderID] = &cp
	return nil
}

func (s *OrderStore) GetOrderDetail(orderID dex.TxId) (*dex.OrderDetail, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.details[orderID]
	if !ok {
		return nil, false, nil
	}
	cp := *o
	return &cp, true, nil
}

func (s *OrderStore) DeleteOrderDetail(orderID dex.TxId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.details, orderID)
	return nil
}
