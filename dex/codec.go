package dex

import (
	"github.com/waykidex/node/regid"
)

// EncodeOrderDetail serializes o in its canonical on-wire field order:
//
//	mode, dex_id, operator_fee_ratio, generate_type, order_type,
//	order_side, coin_symbol, asset_symbol, coin_amount, asset_amount,
//	price, tx_cord, user_regid, total_deal_coin_amount,
//	total_deal_asset_amount, tx_cord
//
// QUIRK: tx_cord is serialized twice — once mid-struct, once trailing.
// Preserved byte-for-byte rather than "fixed"; it is consensus-critical
// if any persisted data relies on it.
func EncodeOrderDetail(dst []byte, o *OrderDetail) []byte {
	dst = appendU8(dst, uint8(o.Mode))
	dst = AppendVarint(dst, uint64(o.DexId))
	dst = AppendVarint(dst, o.OperatorFeeRatio)
	dst = appendU8(dst, uint8(o.GenerateType))
	dst = appendU8(dst, uint8(o.OrderType))
	dst = appendU8(dst, uint8(o.OrderSide))
	dst = AppendString(dst, string(o.CoinSymbol))
	dst = AppendString(dst, string(o.AssetSymbol))
	dst = AppendVarint(dst, uint64(o.CoinAmount))
	dst = AppendVarint(dst, uint64(o.AssetAmount))
	dst = AppendVarint(dst, uint64(o.Price))
	dst = appendTxCord(dst, o.TxCord)
	dst = regid.Encode(dst, o.UserRegId)
	dst = AppendVarint(dst, uint64(o.TotalDealCoinAmount))
	dst = AppendVarint(dst, uint64(o.TotalDealAssetAmount))
	dst = appendTxCord(dst, o.TxCord) // QUIRK: trailing duplicate, see above.
	return dst
}

// DecodeOrderDetail is the inverse of EncodeOrderDetail. The trailing
// duplicate tx_cord is read and discarded after being checked for
// equality with the mid-struct one; a mismatch between the two
// indicates tampering or corruption upstream of the codec and is
// rejected rather than silently accepted.
func DecodeOrderDetail(b []byte, off *int) (*OrderDetail, error) {
	var o OrderDetail

	mode, err := readU8(b, off)
	if err != nil {
		return nil, err
	}
	o.Mode = OperatorMode(mode)
	if !o.Mode.Valid() {
		return nil, codecErr(CodecErrUnknownEnum, "unknown operator_mode")
	}

	dexID, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	o.DexId = uint32(dexID)

	feeRatio, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	o.OperatorFeeRatio = feeRatio

	gen, err := readU8(b, off)
	if err != nil {
		return nil, err
	}
	o.GenerateType = OrderGenerateType(gen)
	if !o.GenerateType.Valid() {
		return nil, codecErr(CodecErrUnknownEnum, "unknown generate_type")
	}

	ot, err := readU8(b, off)
	if err != nil {
		return nil, err
	}
	o.OrderType = OrderType(ot)
	if !o.OrderType.Valid() {
		return nil, codecErr(CodecErrUnknownEnum, "unknown order_type")
	}

	side, err := readU8(b, off)
	if err != nil {
		return nil, err
	}
	o.OrderSide = OrderSide(side)
	if !o.OrderSide.Valid() {
		return nil, codecErr(CodecErrUnknownEnum, "unknown order_side")
	}

	coinSym, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return nil, err
	}
	o.CoinSymbol = TokenSymbol(coinSym)

	assetSym, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return nil, err
	}
	o.AssetSymbol = TokenSymbol(assetSym)

	coinAmount, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	o.CoinAmount = Amount(coinAmount)

	assetAmount, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	o.AssetAmount = Amount(assetAmount)

	price, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	o.Price = Price(price)

	cord, err := readTxCord(b, off)
	if err != nil {
		return nil, err
	}
	o.TxCord = cord

	user, n, err := regid.Decode(b[*off:])
	if err != nil {
		return nil, codecErr(CodecErrTruncated, err.Error())
	}
	*off += n
	o.UserRegId = user

	totalCoin, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	o.TotalDealCoinAmount = Amount(totalCoin)

	totalAsset, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	o.TotalDealAssetAmount = Amount(totalAsset)

	trailingCord, err := readTxCord(b, off) // QUIRK: trailing duplicate, see EncodeOrderDetail.
	if err != nil {
		return nil, err
	}
	if trailingCord != o.TxCord {
		return nil, codecErr(CodecErrTruncated, "duplicate trailing tx_cord mismatch")
	}

	return &o, nil
}

func appendTxCord(dst []byte, c TxCord) []byte {
	dst = AppendVarint(dst, uint64(c.BlockHeight))
	dst = AppendVarint(dst, uint64(c.BlockIndex))
	return dst
}

func readTxCord(b []byte, off *int) (TxCord, error) {
	h, err := ReadVarint(b, off)
	if err != nil {
		return TxCord{}, err
	}
	i, err := ReadVarint(b, off)
	if err != nil {
		return TxCord{}, err
	}
	return TxCord{BlockHeight: uint32(h), BlockIndex: uint16(i)}, nil
}

// EncodeActiveOrder serializes an ActiveOrder: generate_type, tx_cord,
// total_deal_coin_amount, total_deal_asset_amount.
func EncodeActiveOrder(dst []byte, a *ActiveOrder) []byte {
	dst = appendU8(dst, uint8(a.GenerateType))
	dst = appendTxCord(dst, a.TxCord)
	dst = AppendVarint(dst, uint64(a.TotalDealCoinAmount))
	dst = AppendVarint(dst, uint64(a.TotalDealAssetAmount))
	return dst
}

func DecodeActiveOrder(b []byte, off *int) (*ActiveOrder, error) {
	var a ActiveOrder
	gen, err := readU8(b, off)
	if err != nil {
		return nil, err
	}
	a.GenerateType = OrderGenerateType(gen)
	if !a.GenerateType.Valid() {
		return nil, codecErr(CodecErrUnknownEnum, "unknown generate_type")
	}
	cord, err := readTxCord(b, off)
	if err != nil {
		return nil, err
	}
	a.TxCord = cord
	coin, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	a.TotalDealCoinAmount = Amount(coin)
	asset, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	a.TotalDealAssetAmount = Amount(asset)
	return &a, nil
}

// EncodeDexOperator serializes a DexOperator record.
func EncodeDexOperator(dst []byte, d *DexOperator) []byte {
	dst = AppendVarint(dst, uint64(d.DexId))
	dst = regid.Encode(dst, d.OwnerRegId)
	dst = regid.Encode(dst, d.MatchRegId)
	dst = AppendString(dst, d.Name)
	dst = AppendString(dst, d.PortalUrl)
	dst = AppendVarint(dst, d.MakerFeeRatio)
	dst = AppendVarint(dst, d.TakerFeeRatio)
	dst = AppendString(dst, d.Memo)
	return dst
}

const (
	maxOperatorNameLen = 64
	maxPortalUrlLen    = 256
	maxOperatorMemoLen = 256
)

func DecodeDexOperator(b []byte, off *int) (*DexOperator, error) {
	var d DexOperator
	dexID, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	d.DexId = uint32(dexID)

	owner, n, err := regid.Decode(b[*off:])
	if err != nil {
		return nil, codecErr(CodecErrTruncated, err.Error())
	}
	*off += n
	d.OwnerRegId = owner

	match, n, err := regid.Decode(b[*off:])
	if err != nil {
		return nil, codecErr(CodecErrTruncated, err.Error())
	}
	*off += n
	d.MatchRegId = match

	name, err := ReadString(b, off, maxOperatorNameLen)
	if err != nil {
		return nil, err
	}
	d.Name = name

	portal, err := ReadString(b, off, maxPortalUrlLen)
	if err != nil {
		return nil, err
	}
	d.PortalUrl = portal

	makerFee, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	d.MakerFeeRatio = makerFee

	takerFee, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	d.TakerFeeRatio = takerFee

	memo, err := ReadString(b, off, maxOperatorMemoLen)
	if err != nil {
		return nil, err
	}
	d.Memo = memo

	return &d, nil
}

// EncodeDealItem serializes a DealItem: buy_order_id, sell_order_id,
// deal_price, deal_coin_amount, deal_asset_amount.
func EncodeDealItem(dst []byte, it *DealItem) []byte {
	dst = append(dst, it.BuyOrderId[:]...)
	dst = append(dst, it.SellOrderId[:]...)
	dst = AppendVarint(dst, uint64(it.DealPrice))
	dst = AppendVarint(dst, uint64(it.DealCoinAmount))
	dst = AppendVarint(dst, uint64(it.DealAssetAmount))
	return dst
}

func DecodeDealItem(b []byte, off *int) (*DealItem, error) {
	var it DealItem
	buyID, err := readFixed32(b, off)
	if err != nil {
		return nil, err
	}
	it.BuyOrderId = TxId(buyID)
	sellID, err := readFixed32(b, off)
	if err != nil {
		return nil, err
	}
	it.SellOrderId = TxId(sellID)
	price, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	it.DealPrice = Price(price)
	coin, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	it.DealCoinAmount = Amount(coin)
	asset, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	it.DealAssetAmount = Amount(asset)
	return &it, nil
}
