package dex

import (
	"github.com/waykidex/node/regid"
)

// TokenSymbol is a short uppercase-alphanumeric ASCII asset symbol
// (1-7 chars), whitelisted by the external asset registry.
type TokenSymbol string

// Amount is a 64-bit unsigned quantity in the token's minor unit
// ("sawi").
type Amount uint64

// Price is a 64-bit unsigned price in minor coin units per whole asset
// unit, scaled by PriceBoost.
type Price uint64

// TxCord identifies the originating transaction of a persisted entity:
// (block_height, block_index).
type TxCord struct {
	BlockHeight uint32
	BlockIndex  uint16
}

// Less orders two TxCords by block height then index — the settlement
// engine's definitive ordering key for taker determination.
func (c TxCord) Less(o TxCord) bool {
	if c.BlockHeight != o.BlockHeight {
		return c.BlockHeight < o.BlockHeight
	}
	return c.BlockIndex < o.BlockIndex
}

// TxId is a 256-bit transaction hash.
type TxId [32]byte

// OrderSide distinguishes a buy order from a sell order.
type OrderSide uint8

const (
	OrderSideBuy  OrderSide = 1
	OrderSideSell OrderSide = 2
)

func (s OrderSide) Valid() bool { return s == OrderSideBuy || s == OrderSideSell }

// OrderType distinguishes a limit order from a market order.
type OrderType uint8

const (
	OrderTypeLimitPrice  OrderType = 1
	OrderTypeMarketPrice OrderType = 2
)

func (t OrderType) Valid() bool { return t == OrderTypeLimitPrice || t == OrderTypeMarketPrice }

// OrderGenerateType distinguishes an order the user placed directly
// from one the system generated on the user's behalf (e.g. CDP
// liquidation).
type OrderGenerateType uint8

const (
	GenerateTypeEmpty     OrderGenerateType = 0
	GenerateTypeUserGen   OrderGenerateType = 1
	GenerateTypeSystemGen OrderGenerateType = 2
)

func (g OrderGenerateType) Valid() bool {
	switch g {
	case GenerateTypeEmpty, GenerateTypeUserGen, GenerateTypeSystemGen:
		return true
	default:
		return false
	}
}

// OperatorMode chooses between the simple (no operator signature, zero
// operator fee) model and the authenticated (operator co-signs, custom
// fee ratio up to a cap) model.
type OperatorMode uint8

const (
	OperatorModeDefault     OperatorMode = 0
	OperatorModeRequireAuth OperatorMode = 1
)

func (m OperatorMode) Valid() bool {
	return m == OperatorModeDefault || m == OperatorModeRequireAuth
}

// OrderDetail is the full record of an accepted order.
type OrderDetail struct {
	Mode                OperatorMode
	DexId               uint32
	OperatorFeeRatio    uint64
	GenerateType        OrderGenerateType
	OrderType           OrderType
	OrderSide           OrderSide
	CoinSymbol          TokenSymbol
	AssetSymbol         TokenSymbol
	CoinAmount          Amount
	AssetAmount         Amount
	Price               Price
	TxCord              TxCord
	UserRegId           regid.RegId
	TotalDealCoinAmount Amount
	TotalDealAssetAmount Amount
}

// IsEmpty reports whether o is the zero-value OrderDetail.
func (o *OrderDetail) IsEmpty() bool {
	return o == nil || (*o == OrderDetail{})
}

// Reset returns o to its zero value in place.
func (o *OrderDetail) Reset() {
	*o = OrderDetail{}
}

// IsFullyFilled reports whether the order has no remaining capacity.
func (o *OrderDetail) IsFullyFilled() bool {
	switch {
	case o.OrderType == OrderTypeMarketPrice && o.OrderSide == OrderSideBuy:
		return o.TotalDealCoinAmount >= o.CoinAmount
	case o.OrderSide == OrderSideBuy:
		return o.TotalDealAssetAmount >= o.AssetAmount
	default: // sell, limit or market
		return o.TotalDealAssetAmount >= o.AssetAmount
	}
}

// ceilDiv computes ceil(num*mul / den) without overflow for the ranges
// this subsystem deals in (amounts and prices are both < 2^64, and the
// product is bounded by callers to stay within uint64 via the asset
// registry's max-amount ceilings).
func ceilDiv(num, mul, den uint64) uint64 {
	if den == 0 {
		return 0
	}
	prodHi, prodLo := mulU64(num, mul)
	q, r := divU128(prodHi, prodLo, den)
	if r != 0 {
		q++
	}
	return q
}

// NewUserBuyLimit constructs a buy-limit OrderDetail, computing the
// frozen coin_amount = ceil(asset_amount * price / PRICE_BOOST).
func NewUserBuyLimit(mode OperatorMode, dexID uint32, operatorFeeRatio uint64, coin, asset TokenSymbol, assetAmount Amount, price Price, cord TxCord, user regid.RegId) (*OrderDetail, error) {
	if price == 0 {
		return nil, invalidOrderErr(ReasonPriceOutOfRange, "limit order price must be > 0")
	}
	if assetAmount == 0 {
		return nil, invalidOrderErr(ReasonAmountOutOfRange, "limit order asset_amount must be > 0")
	}
	coinAmount := Amount(ceilDiv(uint64(assetAmount), uint64(price), PriceBoost))
	return &OrderDetail{
		Mode:             mode,
		DexId:            dexID,
		OperatorFeeRatio: operatorFeeRatio,
		GenerateType:     GenerateTypeUserGen,
		OrderType:        OrderTypeLimitPrice,
		OrderSide:        OrderSideBuy,
		CoinSymbol:       coin,
		AssetSymbol:      asset,
		CoinAmount:       coinAmount,
		AssetAmount:      assetAmount,
		Price:            price,
		TxCord:           cord,
		UserRegId:        user,
	}, nil
}

// NewUserSellLimit constructs a sell-limit OrderDetail. CoinAmount is
// left 0 at construction time; it is only meaningful once filled.
func NewUserSellLimit(mode OperatorMode, dexID uint32, operatorFeeRatio uint64, coin, asset TokenSymbol, assetAmount Amount, price Price, cord TxCord, user regid.RegId) (*OrderDetail, error) {
	if price == 0 {
		return nil, invalidOrderErr(ReasonPriceOutOfRange, "limit order price must be > 0")
	}
	if assetAmount == 0 {
		return nil, invalidOrderErr(ReasonAmountOutOfRange, "limit order asset_amount must be > 0")
	}
	return &OrderDetail{
		Mode:             mode,
		DexId:            dexID,
		OperatorFeeRatio: operatorFeeRatio,
		GenerateType:     GenerateTypeUserGen,
		OrderType:        OrderTypeLimitPrice,
		OrderSide:        OrderSideSell,
		CoinSymbol:       coin,
		AssetSymbol:      asset,
		AssetAmount:      assetAmount,
		Price:            price,
		TxCord:           cord,
		UserRegId:        user,
	}, nil
}

// NewUserBuyMarket constructs a market-buy OrderDetail: coin_amount > 0,
// asset_amount = 0, price = 0.
func NewUserBuyMarket(mode OperatorMode, dexID uint32, operatorFeeRatio uint64, coin, asset TokenSymbol, coinAmount Amount, cord TxCord, user regid.RegId) (*OrderDetail, error) {
	if coinAmount == 0 {
		return nil, invalidOrderErr(ReasonAmountOutOfRange, "market buy coin_amount must be > 0")
	}
	return newMarketOrder(mode, dexID, operatorFeeRatio, coin, asset, coinAmount, 0, OrderSideBuy, GenerateTypeUserGen, cord, user)
}

// NewUserSellMarket constructs a market-sell OrderDetail: asset_amount >
// 0, coin_amount = 0, price = 0.
func NewUserSellMarket(mode OperatorMode, dexID uint32, operatorFeeRatio uint64, coin, asset TokenSymbol, assetAmount Amount, cord TxCord, user regid.RegId) (*OrderDetail, error) {
	if assetAmount == 0 {
		return nil, invalidOrderErr(ReasonAmountOutOfRange, "market sell asset_amount must be > 0")
	}
	return newMarketOrder(mode, dexID, operatorFeeRatio, coin, asset, 0, assetAmount, OrderSideSell, GenerateTypeUserGen, cord, user)
}

// NewSystemBuyMarket constructs a system-generated market-buy order
// (e.g. CDP-triggered WGRT-by-WUSD), always against the reserved DEX.
func NewSystemBuyMarket(coin, asset TokenSymbol, coinAmount Amount, cord TxCord, syntheticUser regid.RegId) (*OrderDetail, error) {
	if coinAmount == 0 {
		return nil, invalidOrderErr(ReasonAmountOutOfRange, "system market buy coin_amount must be > 0")
	}
	return newMarketOrder(OperatorModeDefault, ReservedDexId, 0, coin, asset, coinAmount, 0, OrderSideBuy, GenerateTypeSystemGen, cord, syntheticUser)
}

func newMarketOrder(mode OperatorMode, dexID uint32, operatorFeeRatio uint64, coin, asset TokenSymbol, coinAmount, assetAmount Amount, side OrderSide, gen OrderGenerateType, cord TxCord, user regid.RegId) (*OrderDetail, error) {
	return &OrderDetail{
		Mode:             mode,
		DexId:            dexID,
		OperatorFeeRatio: operatorFeeRatio,
		GenerateType:     gen,
		OrderType:        OrderTypeMarketPrice,
		OrderSide:        side,
		CoinSymbol:       coin,
		AssetSymbol:      asset,
		CoinAmount:       coinAmount,
		AssetAmount:      assetAmount,
		Price:            0,
		TxCord:           cord,
		UserRegId:        user,
	}, nil
}

// ActiveOrder is the compact index entry stored by order id. The full
// OrderDetail is re-read from the originating transaction via TxCord;
// ActiveOrder holds only mutable deal progress.
type ActiveOrder struct {
	GenerateType         OrderGenerateType
	TxCord               TxCord
	TotalDealCoinAmount  Amount
	TotalDealAssetAmount Amount
}

func (a *ActiveOrder) IsEmpty() bool {
	return a == nil || (*a == ActiveOrder{})
}

func (a *ActiveOrder) Reset() {
	*a = ActiveOrder{}
}

// DexOperator is the persistent per-DexId operator record. Only
// MatchRegId may submit settlement transactions for this DexId.
type DexOperator struct {
	DexId          uint32
	OwnerRegId     regid.RegId
	MatchRegId     regid.RegId
	Name           string
	PortalUrl      string
	MakerFeeRatio  uint64
	TakerFeeRatio  uint64
	Memo           string
}

func (d *DexOperator) IsEmpty() bool {
	return d == nil || d.OwnerRegId.IsEmpty()
}

// DealItem is one entry in a settlement transaction.
type DealItem struct {
	BuyOrderId      TxId
	SellOrderId     TxId
	DealPrice       Price
	DealCoinAmount  Amount
	DealAssetAmount Amount
}
