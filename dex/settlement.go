package dex

import "github.com/waykidex/node/regid"

// SettlementConfig carries settlement-engine-specific policy knobs.
type SettlementConfig struct {
	ValidationConfig
	// RiskReserveRegId collects taker/maker fees for deals on the
	// reserved DEX, in place of an operator owner.
	RiskReserveRegId regid.RegId
	// MinViableTradeCoin is the dust threshold below which a market
	// buy's remaining unspent coin is considered unfillable and the
	// order is completed rather than left open.
	MinViableTradeCoin Amount
}

// orderRuntime tracks one order's mutable state across the deal items
// of a single settle tx, so remaining-capacity checks (step 7) see
// cumulative totals even when the same order is matched against
// multiple counterparties in one batch.
type orderRuntime struct {
	id             TxId
	detail         *OrderDetail
	active         *ActiveOrder
	dealCoin       Amount // running total, starts at active.TotalDealCoinAmount
	dealAsset      Amount // running total, starts at active.TotalDealAssetAmount
}

// settleEffect is the fully-computed, not-yet-applied result of one
// deal item. SettleDeals computes every item's effect before applying
// any of them, so a failure partway through the batch leaves no trace.
type settleEffect struct {
	buy, sell          *orderRuntime
	dealCoin, dealAsset Amount
	buyerFee, sellerFee Amount
	buyComplete, sellComplete bool
	buyResidual, sellResidual Amount
}

// loadOrderRuntime fetches (and caches) an order's ActiveOrder and
// OrderDetail, seeding the running deal totals from the store.
func loadOrderRuntime(cache map[TxId]*orderRuntime, id TxId, store OrderStore, i int) (*orderRuntime, error) {
	if rt, ok := cache[id]; ok {
		return rt, nil
	}
	active, ok, err := store.GetActiveOrder(id)
	if err != nil {
		return nil, err
	}
	if !ok || active.IsEmpty() {
		return nil, settleErr(SettleErrOrderNotFound, i, "active order not found")
	}
	detail, ok, err := store.GetOrderDetail(id)
	if err != nil {
		return nil, err
	}
	if !ok || detail.IsEmpty() {
		return nil, settleErr(SettleErrOrderNotFound, i, "order detail not found")
	}
	rt := &orderRuntime{
		id:        id,
		detail:    detail,
		active:    active,
		dealCoin:  active.TotalDealCoinAmount,
		dealAsset: active.TotalDealAssetAmount,
	}
	cache[id] = rt
	return rt, nil
}

// resolveDealPrice resolves and validates the execution price for one
// deal item against its two orders' price constraints.
func resolveDealPrice(buy, sell *OrderDetail, dealPrice Price, i int) (Price, error) {
	buyLimit := buy.OrderType == OrderTypeLimitPrice
	sellLimit := sell.OrderType == OrderTypeLimitPrice
	switch {
	case buyLimit && sellLimit:
		if dealPrice < sell.Price || dealPrice > buy.Price {
			return 0, settleErr(SettleErrPriceInfeasible, i, "deal_price outside [sell.price, buy.price]")
		}
		return dealPrice, nil
	case buyLimit && !sellLimit:
		if dealPrice != buy.Price {
			return 0, settleErr(SettleErrPriceInfeasible, i, "deal_price must equal the limit side's price")
		}
		return buy.Price, nil
	case !buyLimit && sellLimit:
		if dealPrice != sell.Price {
			return 0, settleErr(SettleErrPriceInfeasible, i, "deal_price must equal the limit side's price")
		}
		return sell.Price, nil
	default:
		return 0, settleErr(SettleErrBothMarket, i, "both orders are market orders")
	}
}

// checkRemainingCapacity bounds a deal item against each order's
// remaining capacity, using the running totals *after* tentatively
// adding this deal item.
func checkRemainingCapacity(buy, sell *orderRuntime, newDealCoin, newDealAsset, newSellDealAsset Amount, i int) error {
	if buy.detail.OrderType == OrderTypeLimitPrice {
		if newDealAsset > buy.detail.AssetAmount {
			return settleErr(SettleErrOverFill, i, "buy-limit asset capacity exceeded")
		}
		if newDealCoin > buy.detail.CoinAmount {
			return settleErr(SettleErrOverFill, i, "buy-limit frozen coin capacity exceeded")
		}
	} else {
		if newDealCoin > buy.detail.CoinAmount {
			return settleErr(SettleErrOverFill, i, "buy-market coin capacity exceeded")
		}
	}
	if newSellDealAsset > sell.detail.AssetAmount {
		return settleErr(SettleErrOverFill, i, "sell asset capacity exceeded")
	}
	return nil
}

// determineTaker reports whether the buy side is the taker: the order
// with the later TxCord is the taker; ties favor the buy side.
func determineTaker(buy, sell *orderRuntime) (buyIsTaker bool) {
	if buy.detail.TxCord == sell.detail.TxCord {
		return true
	}
	return sell.detail.TxCord.Less(buy.detail.TxCord)
}

// resolveFeeRatio resolves one side's fee ratio: the taker/maker split
// from the DexOperator, overridden by the order's own
// operator_fee_ratio under RequireAuth mode (capped).
func resolveFeeRatio(detail *OrderDetail, isTaker bool, op *DexOperator, cfg SettlementConfig) uint64 {
	var ratio uint64
	if op != nil {
		if isTaker {
			ratio = op.TakerFeeRatio
		} else {
			ratio = op.MakerFeeRatio
		}
	}
	if detail.Mode == OperatorModeRequireAuth {
		cap := cfg.OperatorFeeRatioCap
		if op != nil {
			if sum := op.MakerFeeRatio + op.TakerFeeRatio; sum < cap {
				cap = sum
			}
		}
		ratio = detail.OperatorFeeRatio
		if ratio > cap {
			ratio = cap
		}
	}
	return ratio
}

// isOrderComplete reports whether an order's remaining capacity has
// been exhausted (or, for a market buy, whether what remains is too
// small to ever fill) and should be retired.
func isOrderComplete(detail *OrderDetail, dealCoin, dealAsset Amount, cfg SettlementConfig) bool {
	if detail.OrderSide == OrderSideBuy {
		if detail.OrderType == OrderTypeMarketPrice {
			remaining := detail.CoinAmount - dealCoin
			return dealCoin >= detail.CoinAmount || remaining < cfg.MinViableTradeCoin
		}
		return dealAsset >= detail.AssetAmount
	}
	return dealAsset >= detail.AssetAmount
}

// residualFreeze computes the leftover frozen amount to refund when an
// order completes, mirroring CancelOrder's own computation.
func residualFreeze(detail *OrderDetail, dealCoin, dealAsset Amount) Amount {
	if detail.OrderSide == OrderSideBuy {
		if detail.CoinAmount <= dealCoin {
			return 0
		}
		return detail.CoinAmount - dealCoin
	}
	if detail.AssetAmount <= dealAsset {
		return 0
	}
	return detail.AssetAmount - dealAsset
}

// computeEffect runs every check for one deal item and computes its
// resulting balance and order-state changes, without touching the
// ledger or store.
func computeEffect(item *DealItem, i int, dispatcherDexID uint32, cache map[TxId]*orderRuntime, store OrderStore, operators OperatorRegistry, cfg SettlementConfig) (*settleEffect, error) {
	buy, err := loadOrderRuntime(cache, item.BuyOrderId, store, i)
	if err != nil {
		return nil, err
	}
	sell, err := loadOrderRuntime(cache, item.SellOrderId, store, i)
	if err != nil {
		return nil, err
	}

	if buy.detail.DexId != dispatcherDexID || sell.detail.DexId != dispatcherDexID {
		return nil, settleErr(SettleErrDexMismatch, i, "order dex_id does not match settle tx dex_id")
	}
	if buy.detail.OrderSide != OrderSideBuy || sell.detail.OrderSide != OrderSideSell {
		return nil, settleErr(SettleErrBadSide, i, "buy/sell order_side mismatch")
	}
	if buy.detail.CoinSymbol != sell.detail.CoinSymbol || buy.detail.AssetSymbol != sell.detail.AssetSymbol {
		return nil, settleErr(SettleErrSymbolMismatch, i, "coin_symbol/asset_symbol mismatch")
	}

	dealPrice, err := resolveDealPrice(buy.detail, sell.detail, item.DealPrice, i)
	if err != nil {
		return nil, err
	}

	wantCoin := Amount(mulDivCeil(uint64(item.DealAssetAmount), uint64(dealPrice), PriceBoost))
	if wantCoin != item.DealCoinAmount {
		return nil, settleErr(SettleErrFillIncoherent, i, "deal_coin_amount != ceil(deal_asset_amount*deal_price/PRICE_BOOST)")
	}

	newBuyDealAsset, err := addAmount(buy.dealAsset, item.DealAssetAmount)
	if err != nil {
		return nil, settleErr(SettleErrOverFill, i, "overflow accumulating buy deal_asset")
	}
	newBuyDealCoin, err := addAmount(buy.dealCoin, item.DealCoinAmount)
	if err != nil {
		return nil, settleErr(SettleErrOverFill, i, "overflow accumulating buy deal_coin")
	}
	newSellDealAsset, err := addAmount(sell.dealAsset, item.DealAssetAmount)
	if err != nil {
		return nil, settleErr(SettleErrOverFill, i, "overflow accumulating sell deal_asset")
	}
	newSellDealCoin, err := addAmount(sell.dealCoin, item.DealCoinAmount)
	if err != nil {
		return nil, settleErr(SettleErrOverFill, i, "overflow accumulating sell deal_coin")
	}

	if err := checkRemainingCapacity(buy, sell, newBuyDealCoin, newBuyDealAsset, newSellDealAsset, i); err != nil {
		return nil, err
	}
	if newSellDealAsset > sell.detail.AssetAmount {
		return nil, settleErr(SettleErrOverFill, i, "sell asset capacity exceeded")
	}

	op, _ := operators.Get(dispatcherDexID)
	buyIsTaker := determineTaker(buy, sell)
	buyerRatio := resolveFeeRatio(buy.detail, buyIsTaker, op, cfg)
	sellerRatio := resolveFeeRatio(sell.detail, !buyIsTaker, op, cfg)

	buyerFee := Amount(mulDivFloor(uint64(item.DealAssetAmount), buyerRatio, RatioBoost))
	sellerFee := Amount(mulDivFloor(uint64(item.DealCoinAmount), sellerRatio, RatioBoost))

	buy.dealAsset = newBuyDealAsset
	buy.dealCoin = newBuyDealCoin
	sell.dealAsset = newSellDealAsset
	sell.dealCoin = newSellDealCoin

	buyComplete := isOrderComplete(buy.detail, buy.dealCoin, buy.dealAsset, cfg)
	sellComplete := isOrderComplete(sell.detail, sell.dealCoin, sell.dealAsset, cfg)

	eff := &settleEffect{
		buy: buy, sell: sell,
		dealCoin: item.DealCoinAmount, dealAsset: item.DealAssetAmount,
		buyerFee: buyerFee, sellerFee: sellerFee,
		buyComplete: buyComplete, sellComplete: sellComplete,
	}
	if buyComplete {
		eff.buyResidual = residualFreeze(buy.detail, buy.dealCoin, buy.dealAsset)
	}
	if sellComplete {
		eff.sellResidual = residualFreeze(sell.detail, sell.dealCoin, sell.dealAsset)
	}
	return eff, nil
}

// applyEffect applies one deal item's balance moves, ActiveOrder
// updates, and retirement of completed orders.
func applyEffect(eff *settleEffect, operators OperatorRegistry, dispatcherDexID uint32, ledger AccountLedger, store OrderStore, cfg SettlementConfig) error {
	buyDetail, sellDetail := eff.buy.detail, eff.sell.detail

	if err := ledger.DebitFrozen(buyDetail.UserRegId, buyDetail.CoinSymbol, eff.dealCoin); err != nil {
		return err
	}
	if err := ledger.CreditAvailable(buyDetail.UserRegId, buyDetail.AssetSymbol, eff.dealAsset-eff.buyerFee); err != nil {
		return err
	}
	if err := ledger.DebitFrozen(sellDetail.UserRegId, sellDetail.AssetSymbol, eff.dealAsset); err != nil {
		return err
	}
	if err := ledger.CreditAvailable(sellDetail.UserRegId, sellDetail.CoinSymbol, eff.dealCoin-eff.sellerFee); err != nil {
		return err
	}

	feeRecipient := cfg.RiskReserveRegId
	if dispatcherDexID != ReservedDexId {
		if op, ok := operators.Get(dispatcherDexID); ok {
			feeRecipient = op.OwnerRegId
		}
	}
	if eff.buyerFee > 0 {
		if err := ledger.CreditAvailable(feeRecipient, buyDetail.AssetSymbol, eff.buyerFee); err != nil {
			return err
		}
	}
	if eff.sellerFee > 0 {
		if err := ledger.CreditAvailable(feeRecipient, sellDetail.CoinSymbol, eff.sellerFee); err != nil {
			return err
		}
	}

	if err := persistRuntime(eff.buy, eff.buyComplete, eff.buyResidual, ledger, store); err != nil {
		return err
	}
	if err := persistRuntime(eff.sell, eff.sellComplete, eff.sellResidual, ledger, store); err != nil {
		return err
	}
	return nil
}

func persistRuntime(rt *orderRuntime, complete bool, residual Amount, ledger AccountLedger, store OrderStore) error {
	if complete {
		if residual > 0 {
			symbol, _ := freezeSide(rt.detail)
			if err := ledger.UnfreezeToAvailable(rt.detail.UserRegId, symbol, residual); err != nil {
				return err
			}
		}
		if err := store.DeleteActiveOrder(rt.id); err != nil {
			return err
		}
		return store.DeleteOrderDetail(rt.id)
	}
	rt.detail.TotalDealCoinAmount = rt.dealCoin
	rt.detail.TotalDealAssetAmount = rt.dealAsset
	if err := store.PutOrderDetail(rt.id, rt.detail); err != nil {
		return err
	}
	active := &ActiveOrder{
		GenerateType:         rt.active.GenerateType,
		TxCord:               rt.active.TxCord,
		TotalDealCoinAmount:  rt.dealCoin,
		TotalDealAssetAmount: rt.dealAsset,
	}
	return store.PutActiveOrder(rt.id, active)
}

// SettleDeals executes a settle tx's deal items, all-or-nothing: every
// item's effect is computed and every check passes before any balance
// or store mutation is applied. dispatcherUid is the settle tx's
// tx_uid; dispatcherDexID is its dex_id (0 for the basic variant, which
// always targets the reserved DEX).
func SettleDeals(dispatcherUid regid.RegId, dispatcherDexID uint32, items []DealItem, operators OperatorRegistry, store OrderStore, ledger AccountLedger, cfg SettlementConfig) error {
	if err := ValidateSettleDispatch(dispatcherUid, dispatcherDexID, operators, cfg.ValidationConfig); err != nil {
		return err
	}

	cache := make(map[TxId]*orderRuntime)
	effects := make([]*settleEffect, 0, len(items))
	for i := range items {
		eff, err := computeEffect(&items[i], i, dispatcherDexID, cache, store, operators, cfg)
		if err != nil {
			return err
		}
		effects = append(effects, eff)
	}

	for _, eff := range effects {
		if err := applyEffect(eff, operators, dispatcherDexID, ledger, store, cfg); err != nil {
			return err
		}
	}
	return nil
}
