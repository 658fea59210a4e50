package dex

import (
	"bytes"
	"testing"

	"github.com/waykidex/node/regid"
)

func sampleOrderDetail() *OrderDetail {
	return &OrderDetail{
		Mode:                 OperatorModeRequireAuth,
		DexId:                7,
		OperatorFeeRatio:     1_000_000,
		GenerateType:         GenerateTypeUserGen,
		OrderType:            OrderTypeLimitPrice,
		OrderSide:            OrderSideBuy,
		CoinSymbol:           "WUSD",
		AssetSymbol:          "WICC",
		CoinAmount:           5000,
		AssetAmount:          10000,
		Price:                2 * PriceBoost,
		TxCord:               TxCord{BlockHeight: 100, BlockIndex: 3},
		UserRegId:            regid.RegId{Height: 100, Index: 3},
		TotalDealCoinAmount:  123,
		TotalDealAssetAmount: 456,
	}
}

func TestOrderDetailRoundTrip(t *testing.T) {
	o := sampleOrderDetail()
	enc := EncodeOrderDetail(nil, o)
	off := 0
	got, err := DecodeOrderDetail(enc, &off)
	if err != nil {
		t.Fatalf("DecodeOrderDetail: %v", err)
	}
	if *got != *o {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, o)
	}
	if off != len(enc) {
		t.Fatalf("offset = %d, want %d", off, len(enc))
	}
}

func TestOrderDetailTrailingTxCordDuplicated(t *testing.T) {
	o := sampleOrderDetail()
	enc := EncodeOrderDetail(nil, o)

	// Re-derive the trailing tx_cord's encoded bytes and confirm they
	// match the mid-struct tx_cord's encoded bytes (the documented
	// duplication quirk).
	cordBytes := appendTxCord(nil, o.TxCord)
	if len(enc) < len(cordBytes) {
		t.Fatalf("encoded OrderDetail shorter than one tx_cord")
	}
	trailing := enc[len(enc)-len(cordBytes):]
	for i := range cordBytes {
		if trailing[i] != cordBytes[i] {
			t.Fatalf("trailing tx_cord bytes differ from mid-struct tx_cord bytes at %d", i)
		}
	}
}

func TestOrderDetailRejectsTrailingTxCordMismatch(t *testing.T) {
	o := sampleOrderDetail()
	enc := EncodeOrderDetail(nil, o)
	// Corrupt the last byte, the trailing tx_cord's block_index (3 -> 2),
	// so it still decodes but no longer equals the mid-struct tx_cord.
	enc[len(enc)-1] ^= 0x01
	off := 0
	if _, err := DecodeOrderDetail(enc, &off); err == nil {
		t.Fatalf("expected trailing tx_cord mismatch to be rejected")
	}
}

func TestOrderDetailRejectsUnknownEnum(t *testing.T) {
	o := sampleOrderDetail()
	enc := EncodeOrderDetail(nil, o)
	enc[0] = 0xFF // mode byte
	off := 0
	if _, err := DecodeOrderDetail(enc, &off); err == nil {
		t.Fatalf("expected unknown operator_mode to be rejected")
	}
}

func TestActiveOrderRoundTrip(t *testing.T) {
	a := &ActiveOrder{
		GenerateType:         GenerateTypeSystemGen,
		TxCord:               TxCord{BlockHeight: 50, BlockIndex: 1},
		TotalDealCoinAmount:  10,
		TotalDealAssetAmount: 20,
	}
	enc := EncodeActiveOrder(nil, a)
	off := 0
	got, err := DecodeActiveOrder(enc, &off)
	if err != nil {
		t.Fatalf("DecodeActiveOrder: %v", err)
	}
	if *got != *a {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, a)
	}
}

func TestDexOperatorRoundTrip(t *testing.T) {
	d := &DexOperator{
		DexId:         9,
		OwnerRegId:    regid.RegId{Height: 10, Index: 1},
		MatchRegId:    regid.RegId{Height: 10, Index: 2},
		Name:          "example-dex",
		PortalUrl:     "https://example.test",
		MakerFeeRatio: 400_000,
		TakerFeeRatio: 800_000,
		Memo:          "note",
	}
	enc := EncodeDexOperator(nil, d)
	off := 0
	got, err := DecodeDexOperator(enc, &off)
	if err != nil {
		t.Fatalf("DecodeDexOperator: %v", err)
	}
	if *got != *d {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, d)
	}
}

// TestActiveOrderFrozenFixture pins ActiveOrder's wire layout to a
// literal byte vector: generate_type byte, tx_cord (two varints),
// then two varint deal totals.
func TestActiveOrderFrozenFixture(t *testing.T) {
	a := &ActiveOrder{
		GenerateType:         GenerateTypeSystemGen,
		TxCord:               TxCord{BlockHeight: 50, BlockIndex: 1},
		TotalDealCoinAmount:  10,
		TotalDealAssetAmount: 20,
	}
	want := []byte{
		0x02, // generate_type = GenerateTypeSystemGen
		0x32, // tx_cord.block_height = 50
		0x01, // tx_cord.block_index = 1
		0x0a, // total_deal_coin_amount = 10
		0x14, // total_deal_asset_amount = 20
	}
	got := EncodeActiveOrder(nil, a)
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeActiveOrder = % x, want % x", got, want)
	}
}

// TestDealItemFrozenFixture pins DealItem's wire layout to a literal
// byte vector: two 32-byte order ids, then three varint fields.
func TestDealItemFrozenFixture(t *testing.T) {
	it := &DealItem{
		BuyOrderId:      TxId{1, 2, 3},
		SellOrderId:     TxId{4, 5, 6},
		DealPrice:       3 * PriceBoost,
		DealCoinAmount:  1000,
		DealAssetAmount: 333,
	}
	var want []byte
	want = append(want, 1, 2, 3)
	want = append(want, make([]byte, 29)...)
	want = append(want, 4, 5, 6)
	want = append(want, make([]byte, 29)...)
	want = append(want, 0x80, 0x8e, 0x85, 0xc5, 0x00) // deal_price = 300_000_000
	want = append(want, 0x86, 0x68)                   // deal_coin_amount = 1000
	want = append(want, 0x81, 0x4d)                   // deal_asset_amount = 333

	got := EncodeDealItem(nil, it)
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeDealItem = % x, want % x", got, want)
	}
}

func TestDealItemRoundTrip(t *testing.T) {
	it := &DealItem{
		BuyOrderId:      TxId{1, 2, 3},
		SellOrderId:     TxId{4, 5, 6},
		DealPrice:       3 * PriceBoost,
		DealCoinAmount:  1000,
		DealAssetAmount: 333,
	}
	enc := EncodeDealItem(nil, it)
	off := 0
	got, err := DecodeDealItem(enc, &off)
	if err != nil {
		t.Fatalf("DecodeDealItem: %v", err)
	}
	if *got != *it {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, it)
	}
}
