package dex

import (
	"github.com/waykidex/node/regid"
)

// TxCommon is the fields every DEX tx variant shares, in wire order:
// version, tx_type, valid_height, tx_uid, fee_symbol, fees. It is
// followed on the wire by the variant-specific body, then (extended
// variants only) an Option<OperatorSignaturePair>, then the user
// Signature.
type TxCommon struct {
	Version     uint32
	TxType      uint8
	ValidHeight uint64
	TxUid       regid.RegId
	FeeSymbol   TokenSymbol
	Fees        uint64
}

// OperatorSignaturePair is the optional second authorization slot used
// by extended (operator-aware) tx variants.
type OperatorSignaturePair struct {
	RegId     regid.RegId
	Signature []byte
}

// ExtraFields is the operator-mode payload appended by every extended
// tx variant's body.
type ExtraFields struct {
	Mode             OperatorMode
	DexId            uint32
	OperatorFeeRatio uint64
	Memo             string
	OperatorRegId    regid.RegId
}

// LimitOrderBody is the hashed body of a limit buy/sell order (basic or
// extended — Extra is nil for the basic form).
type LimitOrderBody struct {
	CoinSymbol  TokenSymbol
	AssetSymbol TokenSymbol
	AssetAmount Amount
	Price       Price
	Extra       *ExtraFields
}

// MarketBuyBody is the hashed body of a market buy order.
type MarketBuyBody struct {
	CoinSymbol  TokenSymbol
	AssetSymbol TokenSymbol
	CoinAmount  Amount
	Extra       *ExtraFields
}

// MarketSellBody is the hashed body of a market sell order.
type MarketSellBody struct {
	CoinSymbol  TokenSymbol
	AssetSymbol TokenSymbol
	AssetAmount Amount
	Extra       *ExtraFields
}

// CancelOrderBody is the hashed body of a cancel-order tx.
type CancelOrderBody struct {
	OrderId TxId
}

// SettleBody is the hashed body of a basic settle tx.
type SettleBody struct {
	DealItems []DealItem
}

// SettleExBody is the wire body of an extended settle tx.
//
// QUIRK: the signature hash for this variant covers only DealItems,
// omitting DexId and Memo even though both are on the wire — see the
// TxTypeTradeSettleEx case of SighashDigest in sighash.go, which
// preserves this.
type SettleExBody struct {
	DexId     uint32
	DealItems []DealItem
	Memo      string
}

// DexTx is a single tagged-union transaction: exactly one of its body
// pointers is non-nil, selected by Common.TxType.
type DexTx struct {
	Common TxCommon

	LimitBuy  *LimitOrderBody
	LimitSell *LimitOrderBody
	MarketBuy *MarketBuyBody
	MarketSell *MarketSellBody
	Cancel    *CancelOrderBody
	Settle    *SettleBody
	SettleEx  *SettleExBody

	OperatorSig *OperatorSignaturePair // extended variants only, optional
	Signature   []byte                 // user signature, always present once signed
}

// IsExtended reports whether tx is one of the operator-aware "Ex"
// variants.
func (tx *DexTx) IsExtended() bool {
	switch tx.Common.TxType {
	case TxTypeLimitBuyOrderEx, TxTypeLimitSellOrderEx, TxTypeMarketBuyOrderEx, TxTypeMarketSellOrderEx, TxTypeTradeSettleEx:
		return true
	default:
		return false
	}
}

// Extra returns the order's ExtraFields regardless of which body
// pointer is populated, or nil for basic/non-order variants.
func (tx *DexTx) Extra() *ExtraFields {
	switch {
	case tx.LimitBuy != nil:
		return tx.LimitBuy.Extra
	case tx.LimitSell != nil:
		return tx.LimitSell.Extra
	case tx.MarketBuy != nil:
		return tx.MarketBuy.Extra
	case tx.MarketSell != nil:
		return tx.MarketSell.Extra
	default:
		return nil
	}
}
