// Package dex implements the on-chain order-book DEX transaction
// subsystem: canonical binary codec, entity model, signature-hash
// construction, static validation, order placement/cancel, and the
// settlement (matching) engine.
package dex

// PriceBoost is the fixed scale between nominal price and the on-chain
// integer Price field: PRICE_BOOST = 10^8.
const PriceBoost = 100_000_000

// RatioBoost is the fixed scale for fee ratios: a ratio of 10^6 = 1%.
const RatioBoost = 100_000_000

// ReservedDexId is the system-owned DEX used for protocol-internal
// orders (CDP liquidation, etc).
const ReservedDexId uint32 = 0

// DefaultOperatorFeeRatioCap is the default ceiling on an order's
// operator_fee_ratio under OperatorMode_RequireAuth (50%).
const DefaultOperatorFeeRatioCap uint64 = 50_000_000

// MaxVectorLen bounds any VARINT-prefixed vector length accepted by the
// codec (CodecErrOversizeVec above this).
const MaxVectorLen = 1_000_000

// MaxSymbolLen / MinSymbolLen bound TokenSymbol: 1-7 uppercase
// alphanumeric ASCII characters.
const (
	MinSymbolLen = 1
	MaxSymbolLen = 7
)

// Transaction type tags, single byte in the hash preimage. Exact values
// are inherited from the enclosing tx-type enumeration; these are the
// values this subsystem's slice of that enumeration actually uses.
const (
	TxTypeLimitBuyOrder      uint8 = 0xA0
	TxTypeLimitSellOrder     uint8 = 0xA1
	TxTypeMarketBuyOrder     uint8 = 0xA2
	TxTypeMarketSellOrder    uint8 = 0xA3
	TxTypeLimitBuyOrderEx    uint8 = 0xA4
	TxTypeLimitSellOrderEx   uint8 = 0xA5
	TxTypeMarketBuyOrderEx   uint8 = 0xA6
	TxTypeMarketSellOrderEx  uint8 = 0xA7
	TxTypeCancelOrder        uint8 = 0xA8
	TxTypeTradeSettle        uint8 = 0xA9
	TxTypeTradeSettleEx      uint8 = 0xAA
)

// SuiteEd25519 is the only signature suite this subsystem currently
// wires; the suite byte leaves room for a second suite to be added
// later without a wire-format change, see DESIGN.md "Open Questions
// resolved".
const SuiteEd25519 uint8 = 0x01
