package dex

import (
	"bytes"
	"testing"

	"github.com/waykidex/node/regid"
)

func sampleCommon(txType uint8) TxCommon {
	return TxCommon{
		Version:     1,
		TxType:      txType,
		ValidHeight: 500,
		TxUid:       regid.RegId{Height: 100, Index: 1},
		FeeSymbol:   "WICC",
		Fees:        10000,
	}
}

func sampleExtra() *ExtraFields {
	return &ExtraFields{
		Mode:             OperatorModeRequireAuth,
		DexId:            3,
		OperatorFeeRatio: 200_000,
		Memo:             "ex-memo",
		OperatorRegId:    regid.RegId{Height: 50, Index: 2},
	}
}

func checkTxRoundTrip(t *testing.T, tx *DexTx) *DexTx {
	t.Helper()
	enc, err := EncodeTx(tx)
	if err != nil {
		t.Fatalf("EncodeTx: %v", err)
	}
	got, err := DecodeTx(enc)
	if err != nil {
		t.Fatalf("DecodeTx: %v", err)
	}
	reenc, err := EncodeTx(got)
	if err != nil {
		t.Fatalf("re-EncodeTx: %v", err)
	}
	if !bytes.Equal(enc, reenc) {
		t.Fatalf("decode->encode not stable:\n got  %x\n want %x", reenc, enc)
	}
	return got
}

func TestLimitOrderBasicRoundTrip(t *testing.T) {
	tx := &DexTx{
		Common: sampleCommon(TxTypeLimitBuyOrder),
		LimitBuy: &LimitOrderBody{
			CoinSymbol:  "WUSD",
			AssetSymbol: "WICC",
			AssetAmount: 1000,
			Price:       2 * PriceBoost,
		},
		Signature: []byte{1, 2, 3},
	}
	got := checkTxRoundTrip(t, tx)
	if got.LimitBuy == nil || got.LimitBuy.AssetAmount != 1000 {
		t.Fatalf("unexpected decoded body: %+v", got.LimitBuy)
	}
	if got.IsExtended() {
		t.Fatalf("basic limit buy should not be extended")
	}
}

func TestLimitOrderExtendedRoundTrip(t *testing.T) {
	tx := &DexTx{
		Common: sampleCommon(TxTypeLimitSellOrderEx),
		LimitSell: &LimitOrderBody{
			CoinSymbol:  "WUSD",
			AssetSymbol: "WICC",
			AssetAmount: 500,
			Price:       PriceBoost,
			Extra:       sampleExtra(),
		},
		OperatorSig: &OperatorSignaturePair{
			RegId:     regid.RegId{Height: 50, Index: 2},
			Signature: []byte{9, 9, 9},
		},
		Signature: []byte{1, 2, 3, 4},
	}
	got := checkTxRoundTrip(t, tx)
	if !got.IsExtended() {
		t.Fatalf("expected extended tx")
	}
	if got.Extra() == nil || got.Extra().Memo != "ex-memo" {
		t.Fatalf("unexpected extra: %+v", got.Extra())
	}
	if got.OperatorSig == nil || got.OperatorSig.RegId != tx.OperatorSig.RegId {
		t.Fatalf("operator sig not preserved: %+v", got.OperatorSig)
	}
}

func TestLimitOrderExtendedWithoutOperatorSig(t *testing.T) {
	tx := &DexTx{
		Common: sampleCommon(TxTypeLimitBuyOrderEx),
		LimitBuy: &LimitOrderBody{
			CoinSymbol:  "WUSD",
			AssetSymbol: "WICC",
			AssetAmount: 500,
			Price:       PriceBoost,
			Extra:       sampleExtra(),
		},
		Signature: []byte{1},
	}
	got := checkTxRoundTrip(t, tx)
	if got.OperatorSig != nil {
		t.Fatalf("expected nil OperatorSig when absent on the wire")
	}
}

func TestMarketBuyBasicRoundTrip(t *testing.T) {
	tx := &DexTx{
		Common: sampleCommon(TxTypeMarketBuyOrder),
		MarketBuy: &MarketBuyBody{
			CoinSymbol: "WUSD",
			AssetSymbol: "WICC",
			CoinAmount: 7000,
		},
		Signature: []byte{1},
	}
	got := checkTxRoundTrip(t, tx)
	if got.MarketBuy.CoinAmount != 7000 {
		t.Fatalf("unexpected CoinAmount %d", got.MarketBuy.CoinAmount)
	}
}

func TestMarketBuyExtendedMemoAmbiguityQuirk(t *testing.T) {
	// The extended market-buy wire form folds the historical memoIn
	// field and the Extra.Memo field into the single trailing memo
	// string; round-tripping preserves whatever value was set there.
	extra := sampleExtra()
	extra.Memo = "memoIn-or-memo, indistinguishable on this wire"
	tx := &DexTx{
		Common: sampleCommon(TxTypeMarketBuyOrderEx),
		MarketBuy: &MarketBuyBody{
			CoinSymbol:  "WUSD",
			AssetSymbol: "WICC",
			CoinAmount:  500,
			Extra:       extra,
		},
		Signature: []byte{1},
	}
	got := checkTxRoundTrip(t, tx)
	if got.Extra().Memo != extra.Memo {
		t.Fatalf("memo not preserved: got %q, want %q", got.Extra().Memo, extra.Memo)
	}
}

func TestMarketSellRoundTrip(t *testing.T) {
	tx := &DexTx{
		Common: sampleCommon(TxTypeMarketSellOrderEx),
		MarketSell: &MarketSellBody{
			CoinSymbol:  "WUSD",
			AssetSymbol: "WICC",
			AssetAmount: 250,
			Extra:       sampleExtra(),
		},
		Signature: []byte{1},
	}
	got := checkTxRoundTrip(t, tx)
	if got.MarketSell.AssetAmount != 250 {
		t.Fatalf("unexpected AssetAmount %d", got.MarketSell.AssetAmount)
	}
}

func TestCancelOrderRoundTrip(t *testing.T) {
	tx := &DexTx{
		Common:    sampleCommon(TxTypeCancelOrder),
		Cancel:    &CancelOrderBody{OrderId: TxId{9, 9, 9}},
		Signature: []byte{1},
	}
	got := checkTxRoundTrip(t, tx)
	if got.Cancel.OrderId != tx.Cancel.OrderId {
		t.Fatalf("unexpected OrderId %x", got.Cancel.OrderId)
	}
}

func TestSettleBasicRoundTrip(t *testing.T) {
	tx := &DexTx{
		Common: sampleCommon(TxTypeTradeSettle),
		Settle: &SettleBody{
			DealItems: []DealItem{
				{BuyOrderId: TxId{1}, SellOrderId: TxId{2}, DealPrice: PriceBoost, DealCoinAmount: 100, DealAssetAmount: 100},
			},
		},
		Signature: []byte{1},
	}
	got := checkTxRoundTrip(t, tx)
	if len(got.Settle.DealItems) != 1 {
		t.Fatalf("unexpected deal item count %d", len(got.Settle.DealItems))
	}
}

func TestSettleExRoundTrip(t *testing.T) {
	tx := &DexTx{
		Common: sampleCommon(TxTypeTradeSettleEx),
		SettleEx: &SettleExBody{
			DexId: 4,
			DealItems: []DealItem{
				{BuyOrderId: TxId{1}, SellOrderId: TxId{2}, DealPrice: PriceBoost, DealCoinAmount: 100, DealAssetAmount: 100},
			},
			Memo: "settle-memo",
		},
		OperatorSig: &OperatorSignaturePair{RegId: regid.RegId{Height: 1, Index: 1}, Signature: []byte{7}},
		Signature:   []byte{1},
	}
	got := checkTxRoundTrip(t, tx)
	if got.SettleEx.DexId != 4 || got.SettleEx.Memo != "settle-memo" {
		t.Fatalf("unexpected decoded SettleEx body: %+v", got.SettleEx)
	}
}

// TestCancelOrderFrozenFixture pins the cancel-order wire layout to a
// literal byte vector: varint version, tx_type byte, varint
// valid_height, 6-byte little-endian regid, length-prefixed
// fee_symbol, varint fees, the 32-byte order_id, then the
// length-prefixed signature.
func TestCancelOrderFrozenFixture(t *testing.T) {
	tx := &DexTx{
		Common:    sampleCommon(TxTypeCancelOrder),
		Cancel:    &CancelOrderBody{OrderId: TxId{9, 9, 9}},
		Signature: []byte{1},
	}

	var want []byte
	want = append(want, 0x01)                  // version = 1
	want = append(want, TxTypeCancelOrder)      // tx_type
	want = append(want, 0x82, 0x74)             // valid_height = 500
	want = append(want, 0x64, 0x00, 0x00, 0x00) // tx_uid.height = 100 (LE u32)
	want = append(want, 0x01, 0x00)             // tx_uid.index = 1 (LE u16)
	want = append(want, 0x04)                   // fee_symbol length = 4
	want = append(want, "WICC"...)               // fee_symbol
	want = append(want, 0xcd, 0x10)             // fees = 10000
	want = append(want, 9, 9, 9)                // order_id[0:3]
	want = append(want, make([]byte, 29)...)    // order_id[3:32]
	want = append(want, 0x01)                   // signature length = 1
	want = append(want, 0x01)                   // signature bytes

	got, err := EncodeTx(tx)
	if err != nil {
		t.Fatalf("EncodeTx: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeTx(cancel) = % x\nwant             = % x", got, want)
	}
}

func TestDecodeTxRejectsUnknownType(t *testing.T) {
	enc := appendCommon(nil, sampleCommon(0xFF))
	if _, err := DecodeTx(enc); err == nil {
		t.Fatalf("expected unknown tx_type to be rejected")
	}
}
