package dex

import (
	"github.com/waykidex/node/regid"
)

const maxMemoLen = 256
const maxDealItems = 10_000

func appendCommon(dst []byte, c TxCommon) []byte {
	dst = AppendVarint(dst, uint64(c.Version))
	dst = appendU8(dst, c.TxType)
	dst = AppendVarint(dst, c.ValidHeight)
	dst = regid.Encode(dst, c.TxUid)
	dst = AppendString(dst, string(c.FeeSymbol))
	dst = AppendVarint(dst, c.Fees)
	return dst
}

func readCommon(b []byte, off *int) (TxCommon, error) {
	var c TxCommon
	version, err := ReadVarint(b, off)
	if err != nil {
		return c, err
	}
	c.Version = uint32(version)
	txType, err := readU8(b, off)
	if err != nil {
		return c, err
	}
	c.TxType = txType
	validHeight, err := ReadVarint(b, off)
	if err != nil {
		return c, err
	}
	c.ValidHeight = validHeight
	uid, n, err := regid.Decode(b[*off:])
	if err != nil {
		return c, codecErr(CodecErrTruncated, err.Error())
	}
	*off += n
	c.TxUid = uid
	feeSym, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return c, err
	}
	c.FeeSymbol = TokenSymbol(feeSym)
	fees, err := ReadVarint(b, off)
	if err != nil {
		return c, err
	}
	c.Fees = fees
	return c, nil
}

func appendExtra(dst []byte, e *ExtraFields) []byte {
	dst = appendU8(dst, uint8(e.Mode))
	dst = AppendVarint(dst, uint64(e.DexId))
	dst = AppendVarint(dst, e.OperatorFeeRatio)
	return dst
}

func appendExtraTail(dst []byte, e *ExtraFields) []byte {
	dst = AppendString(dst, e.Memo)
	dst = regid.Encode(dst, e.OperatorRegId)
	return dst
}

func readExtraHead(b []byte, off *int) (*ExtraFields, error) {
	var e ExtraFields
	mode, err := readU8(b, off)
	if err != nil {
		return nil, err
	}
	e.Mode = OperatorMode(mode)
	if !e.Mode.Valid() {
		return nil, codecErr(CodecErrUnknownEnum, "unknown operator_mode")
	}
	dexID, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	e.DexId = uint32(dexID)
	feeRatio, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	e.OperatorFeeRatio = feeRatio
	return &e, nil
}

func readExtraTail(b []byte, off *int, e *ExtraFields) error {
	memo, err := ReadString(b, off, maxMemoLen)
	if err != nil {
		return err
	}
	e.Memo = memo
	opRegID, n, err := regid.Decode(b[*off:])
	if err != nil {
		return codecErr(CodecErrTruncated, err.Error())
	}
	*off += n
	e.OperatorRegId = opRegID
	return nil
}

func appendOperatorSigOption(dst []byte, sig *OperatorSignaturePair) []byte {
	return AppendOption(dst, sig != nil, func(d []byte) []byte {
		d = regid.Encode(d, sig.RegId)
		d = AppendVarint(d, uint64(len(sig.Signature)))
		d = append(d, sig.Signature...)
		return d
	})
}

func readOperatorSigOption(b []byte, off *int) (*OperatorSignaturePair, error) {
	var out *OperatorSignaturePair
	present, err := ReadOption(b, off, func(b []byte, off *int) error {
		var pair OperatorSignaturePair
		r, n, err := regid.Decode(b[*off:])
		if err != nil {
			return codecErr(CodecErrTruncated, err.Error())
		}
		*off += n
		pair.RegId = r
		sigLen, err := ReadVarint(b, off)
		if err != nil {
			return err
		}
		if sigLen > MaxVectorLen {
			return codecErr(CodecErrOversizeVec, "operator signature length exceeds ceiling")
		}
		sig, err := readBytes(b, off, int(sigLen))
		if err != nil {
			return err
		}
		pair.Signature = sig
		out = &pair
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return out, nil
}

func appendSignature(dst []byte, sig []byte) []byte {
	dst = AppendVarint(dst, uint64(len(sig)))
	return append(dst, sig...)
}

func readSignature(b []byte, off *int) ([]byte, error) {
	n, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	if n > MaxVectorLen {
		return nil, codecErr(CodecErrOversizeVec, "signature length exceeds ceiling")
	}
	return readBytes(b, off, int(n))
}

func appendDealItems(dst []byte, items []DealItem) []byte {
	dst = AppendVecLen(dst, len(items))
	for i := range items {
		dst = EncodeDealItem(dst, &items[i])
	}
	return dst
}

func readDealItems(b []byte, off *int) ([]DealItem, error) {
	n, err := ReadVecLen(b, off, maxDealItems)
	if err != nil {
		return nil, err
	}
	items := make([]DealItem, 0, n)
	for i := 0; i < n; i++ {
		it, err := DecodeDealItem(b, off)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, nil
}

// EncodeTx serializes tx in its canonical on-wire form: common prefix,
// variant body (the extended forms wrap it in the ExtraFields head and
// tail, written directly with no presence flag),
// Option<OperatorSignaturePair> (extended variants only), then the user
// Signature.
func EncodeTx(tx *DexTx) ([]byte, error) {
	dst := appendCommon(nil, tx.Common)

	switch tx.Common.TxType {
	case TxTypeLimitBuyOrder, TxTypeLimitSellOrder:
		body := tx.LimitBuy
		if tx.Common.TxType == TxTypeLimitSellOrder {
			body = tx.LimitSell
		}
		dst = AppendString(dst, string(body.CoinSymbol))
		dst = AppendString(dst, string(body.AssetSymbol))
		dst = AppendVarint(dst, uint64(body.AssetAmount))
		dst = AppendVarint(dst, uint64(body.Price))

	case TxTypeLimitBuyOrderEx, TxTypeLimitSellOrderEx:
		body := tx.LimitBuy
		if tx.Common.TxType == TxTypeLimitSellOrderEx {
			body = tx.LimitSell
		}
		dst = appendExtra(dst, body.Extra)
		dst = AppendString(dst, string(body.CoinSymbol))
		dst = AppendString(dst, string(body.AssetSymbol))
		dst = AppendVarint(dst, uint64(body.AssetAmount))
		dst = AppendVarint(dst, uint64(body.Price))
		dst = appendExtraTail(dst, body.Extra)

	case TxTypeMarketBuyOrder:
		b := tx.MarketBuy
		dst = AppendString(dst, string(b.CoinSymbol))
		dst = AppendString(dst, string(b.AssetSymbol))
		dst = AppendVarint(dst, uint64(b.CoinAmount))

	case TxTypeMarketBuyOrderEx:
		b := tx.MarketBuy
		dst = appendExtra(dst, b.Extra)
		dst = AppendString(dst, string(b.CoinSymbol))
		dst = AppendString(dst, string(b.AssetSymbol))
		dst = AppendVarint(dst, uint64(b.CoinAmount))
		dst = appendExtraTail(dst, b.Extra) // QUIRK: memo here doubles as the historical memoIn field; kept ambiguous as on the wire.

	case TxTypeMarketSellOrder:
		s := tx.MarketSell
		dst = AppendString(dst, string(s.CoinSymbol))
		dst = AppendString(dst, string(s.AssetSymbol))
		dst = AppendVarint(dst, uint64(s.AssetAmount))

	case TxTypeMarketSellOrderEx:
		s := tx.MarketSell
		dst = appendExtra(dst, s.Extra)
		dst = AppendString(dst, string(s.CoinSymbol))
		dst = AppendString(dst, string(s.AssetSymbol))
		dst = AppendVarint(dst, uint64(s.AssetAmount))
		dst = appendExtraTail(dst, s.Extra)

	case TxTypeCancelOrder:
		dst = append(dst, tx.Cancel.OrderId[:]...)

	case TxTypeTradeSettle:
		dst = appendDealItems(dst, tx.Settle.DealItems)

	case TxTypeTradeSettleEx:
		dst = AppendVarint(dst, uint64(tx.SettleEx.DexId))
		dst = appendDealItems(dst, tx.SettleEx.DealItems)
		dst = AppendString(dst, tx.SettleEx.Memo)

	default:
		return nil, codecErr(CodecErrUnknownEnum, "unknown tx_type")
	}

	if tx.IsExtended() {
		dst = appendOperatorSigOption(dst, tx.OperatorSig)
	}
	dst = appendSignature(dst, tx.Signature)
	return dst, nil
}

// DecodeTx is the inverse of EncodeTx.
func DecodeTx(b []byte) (*DexTx, error) {
	off := 0
	common, err := readCommon(b, &off)
	if err != nil {
		return nil, err
	}
	tx := &DexTx{Common: common}

	switch common.TxType {
	case TxTypeLimitBuyOrder, TxTypeLimitSellOrder:
		body, err := decodeLimitBasic(b, &off)
		if err != nil {
			return nil, err
		}
		assignLimitBody(tx, common.TxType, body)

	case TxTypeLimitBuyOrderEx, TxTypeLimitSellOrderEx:
		body, err := decodeLimitExtended(b, &off)
		if err != nil {
			return nil, err
		}
		assignLimitBody(tx, common.TxType, body)

	case TxTypeMarketBuyOrder:
		body, err := decodeMarketBuyBasic(b, &off)
		if err != nil {
			return nil, err
		}
		tx.MarketBuy = body

	case TxTypeMarketBuyOrderEx:
		body, err := decodeMarketBuyExtended(b, &off)
		if err != nil {
			return nil, err
		}
		tx.MarketBuy = body

	case TxTypeMarketSellOrder:
		body, err := decodeMarketSellBasic(b, &off)
		if err != nil {
			return nil, err
		}
		tx.MarketSell = body

	case TxTypeMarketSellOrderEx:
		body, err := decodeMarketSellExtended(b, &off)
		if err != nil {
			return nil, err
		}
		tx.MarketSell = body

	case TxTypeCancelOrder:
		id, err := readFixed32(b, &off)
		if err != nil {
			return nil, err
		}
		tx.Cancel = &CancelOrderBody{OrderId: TxId(id)}

	case TxTypeTradeSettle:
		items, err := readDealItems(b, &off)
		if err != nil {
			return nil, err
		}
		tx.Settle = &SettleBody{DealItems: items}

	case TxTypeTradeSettleEx:
		dexID, err := ReadVarint(b, &off)
		if err != nil {
			return nil, err
		}
		items, err := readDealItems(b, &off)
		if err != nil {
			return nil, err
		}
		memo, err := ReadString(b, &off, maxMemoLen)
		if err != nil {
			return nil, err
		}
		tx.SettleEx = &SettleExBody{DexId: uint32(dexID), DealItems: items, Memo: memo}

	default:
		return nil, codecErr(CodecErrUnknownEnum, "unknown tx_type")
	}

	if tx.IsExtended() {
		sig, err := readOperatorSigOption(b, &off)
		if err != nil {
			return nil, err
		}
		tx.OperatorSig = sig
	}
	sig, err := readSignature(b, &off)
	if err != nil {
		return nil, err
	}
	tx.Signature = sig

	return tx, nil
}

func decodeLimitBasic(b []byte, off *int) (*LimitOrderBody, error) {
	coin, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return nil, err
	}
	asset, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return nil, err
	}
	assetAmt, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	price, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	return &LimitOrderBody{
		CoinSymbol:  TokenSymbol(coin),
		AssetSymbol: TokenSymbol(asset),
		AssetAmount: Amount(assetAmt),
		Price:       Price(price),
	}, nil
}

func decodeLimitExtended(b []byte, off *int) (*LimitOrderBody, error) {
	extra, err := readExtraHead(b, off)
	if err != nil {
		return nil, err
	}
	coin, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return nil, err
	}
	asset, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return nil, err
	}
	assetAmt, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	price, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	if err := readExtraTail(b, off, extra); err != nil {
		return nil, err
	}
	return &LimitOrderBody{
		CoinSymbol:  TokenSymbol(coin),
		AssetSymbol: TokenSymbol(asset),
		AssetAmount: Amount(assetAmt),
		Price:       Price(price),
		Extra:       extra,
	}, nil
}

func decodeMarketBuyBasic(b []byte, off *int) (*MarketBuyBody, error) {
	coin, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return nil, err
	}
	asset, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return nil, err
	}
	coinAmt, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	return &MarketBuyBody{CoinSymbol: TokenSymbol(coin), AssetSymbol: TokenSymbol(asset), CoinAmount: Amount(coinAmt)}, nil
}

func decodeMarketBuyExtended(b []byte, off *int) (*MarketBuyBody, error) {
	extra, err := readExtraHead(b, off)
	if err != nil {
		return nil, err
	}
	coin, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return nil, err
	}
	asset, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return nil, err
	}
	coinAmt, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	if err := readExtraTail(b, off, extra); err != nil {
		return nil, err
	}
	return &MarketBuyBody{CoinSymbol: TokenSymbol(coin), AssetSymbol: TokenSymbol(asset), CoinAmount: Amount(coinAmt), Extra: extra}, nil
}

func decodeMarketSellBasic(b []byte, off *int) (*MarketSellBody, error) {
	coin, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return nil, err
	}
	asset, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return nil, err
	}
	assetAmt, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	return &MarketSellBody{CoinSymbol: TokenSymbol(coin), AssetSymbol: TokenSymbol(asset), AssetAmount: Amount(assetAmt)}, nil
}

func decodeMarketSellExtended(b []byte, off *int) (*MarketSellBody, error) {
	extra, err := readExtraHead(b, off)
	if err != nil {
		return nil, err
	}
	coin, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return nil, err
	}
	asset, err := ReadString(b, off, MaxSymbolLen)
	if err != nil {
		return nil, err
	}
	assetAmt, err := ReadVarint(b, off)
	if err != nil {
		return nil, err
	}
	if err := readExtraTail(b, off, extra); err != nil {
		return nil, err
	}
	return &MarketSellBody{CoinSymbol: TokenSymbol(coin), AssetSymbol: TokenSymbol(asset), AssetAmount: Amount(assetAmt), Extra: extra}, nil
}

func assignLimitBody(tx *DexTx, txType uint8, body *LimitOrderBody) {
	switch txType {
	case TxTypeLimitBuyOrder, TxTypeLimitBuyOrderEx:
		tx.LimitBuy = body
	default:
		tx.LimitSell = body
	}
}
