package dex

import "github.com/waykidex/node/regid"

// ValidationConfig carries the configurable knobs validation needs
// beyond the registries: the operator fee-ratio ceiling and which of
// a DexOperator's two regids may co-sign under RequireAuth mode.
type ValidationConfig struct {
	// OperatorFeeRatioCap bounds operator_fee_ratio (default: 5e7); a
	// registered operator's maker+taker sum lowers the ceiling further
	// when it is smaller.
	OperatorFeeRatioCap uint64
	// AllowOwnerAsAuthorizer permits DexOperator.OwnerRegId (in addition
	// to MatchRegId) to supply the operator co-signature under
	// RequireAuth mode.
	AllowOwnerAsAuthorizer bool
	// SystemMatcherRegId is the hard-coded system-matcher account
	// permitted to submit settle txs for the reserved DEX.
	SystemMatcherRegId regid.RegId
}

// DefaultValidationConfig returns the default validation policy.
func DefaultValidationConfig(systemMatcher regid.RegId) ValidationConfig {
	return ValidationConfig{
		OperatorFeeRatioCap:    DefaultOperatorFeeRatioCap,
		AllowOwnerAsAuthorizer: true,
		SystemMatcherRegId:     systemMatcher,
	}
}

// checkSymbols enforces the symbol-whitelist check: coin and asset
// symbols must differ and both must be registered.
func checkSymbols(coin, asset TokenSymbol, registry AssetRegistry) error {
	if coin == asset {
		return invalidOrderErr(ReasonSameSymbol, "coin_symbol and asset_symbol must differ")
	}
	if !registry.IsWhitelisted(coin) {
		return invalidOrderErr(ReasonUnknownSymbol, "coin_symbol not whitelisted")
	}
	if !registry.IsWhitelisted(asset) {
		return invalidOrderErr(ReasonUnknownSymbol, "asset_symbol not whitelisted")
	}
	return nil
}

// checkAmountRange enforces the amount-range check: non-zero, <=
// per-symbol max.
func checkAmountRange(symbol TokenSymbol, amount Amount, registry AssetRegistry) error {
	if amount == 0 {
		return invalidOrderErr(ReasonAmountOutOfRange, "amount must be non-zero")
	}
	if max := registry.MaxAmount(symbol); max != 0 && amount > max {
		return invalidOrderErr(ReasonAmountOutOfRange, "amount exceeds per-symbol maximum")
	}
	return nil
}

// checkPriceRange enforces the price-range check (limit orders only).
func checkPriceRange(coin, asset TokenSymbol, price Price, registry AssetRegistry) error {
	min, max := registry.PriceRange(coin, asset)
	if price < min || price > max {
		return invalidOrderErr(ReasonPriceOutOfRange, "price outside configured range")
	}
	return nil
}

// requiresOperator reports whether the operator-existence check
// applies: dex_id != reserved, or mode = RequireAuth.
func requiresOperator(dexID uint32, mode OperatorMode) bool {
	return dexID != ReservedDexId || mode == OperatorModeRequireAuth
}

// checkOperatorExists enforces the operator-existence check.
func checkOperatorExists(dexID uint32, mode OperatorMode, operators OperatorRegistry) (*DexOperator, error) {
	if !requiresOperator(dexID, mode) {
		return nil, nil
	}
	op, ok := operators.Get(dexID)
	if !ok {
		return nil, invalidOrderErr(ReasonUnknownDexOperator, "dex_id has no registered operator")
	}
	return op, nil
}

// checkFeePolicy enforces the operator fee-rate policy check.
func checkFeePolicy(mode OperatorMode, operatorFeeRatio uint64, op *DexOperator, cfg ValidationConfig) error {
	if mode == OperatorModeDefault {
		if operatorFeeRatio != 0 {
			return invalidOrderErr(ReasonModeFeeMismatch, "default mode forbids a non-zero operator_fee_ratio")
		}
		return nil
	}
	cap := cfg.OperatorFeeRatioCap
	if op != nil {
		if sum := op.MakerFeeRatio + op.TakerFeeRatio; sum < cap {
			cap = sum
		}
	}
	if operatorFeeRatio > cap {
		return invalidOrderErr(ReasonFeeRatioOutOfRange, "operator_fee_ratio exceeds configured ceiling")
	}
	return nil
}

// checkOperatorAuth enforces the operator authorization check.
func checkOperatorAuth(mode OperatorMode, sig *OperatorSignaturePair, op *DexOperator, cfg ValidationConfig) error {
	if mode != OperatorModeRequireAuth {
		return nil
	}
	if sig == nil {
		return invalidOrderErr(ReasonMissingOperatorAuth, "operator_signature_pair required under RequireAuth")
	}
	if op == nil {
		return invalidOrderErr(ReasonUnknownDexOperator, "operator authorization requires a registered operator")
	}
	authorized := sig.RegId == op.MatchRegId
	if cfg.AllowOwnerAsAuthorizer {
		authorized = authorized || sig.RegId == op.OwnerRegId
	}
	if !authorized {
		return invalidOrderErr(ReasonBadOperatorSig, "operator_signature_pair.regid does not match dex operator")
	}
	return nil
}

// orderValidationInput is the common shape every order-placing tx
// reduces to before the gauntlet runs.
type orderValidationInput struct {
	coin, asset      TokenSymbol
	orderType        OrderType
	rangedAmountSym  TokenSymbol
	rangedAmount     Amount
	price            Price
	mode             OperatorMode
	dexID            uint32
	operatorFeeRatio uint64
	operatorSig      *OperatorSignaturePair
}

// runOrderGauntlet executes the six validation checks in order,
// returning the first InvalidOrderReason encountered (or the resolved
// *DexOperator on success, nil for the reserved/no-operator case).
func runOrderGauntlet(in orderValidationInput, registry AssetRegistry, operators OperatorRegistry, cfg ValidationConfig) (*DexOperator, error) {
	if err := checkSymbols(in.coin, in.asset, registry); err != nil {
		return nil, err
	}
	if err := checkAmountRange(in.rangedAmountSym, in.rangedAmount, registry); err != nil {
		return nil, err
	}
	if in.orderType == OrderTypeLimitPrice {
		if err := checkPriceRange(in.coin, in.asset, in.price, registry); err != nil {
			return nil, err
		}
	}
	op, err := checkOperatorExists(in.dexID, in.mode, operators)
	if err != nil {
		return nil, err
	}
	if err := checkFeePolicy(in.mode, in.operatorFeeRatio, op, cfg); err != nil {
		return nil, err
	}
	if err := checkOperatorAuth(in.mode, in.operatorSig, op, cfg); err != nil {
		return nil, err
	}
	return op, nil
}

// ValidateLimitOrder runs the gauntlet for a (basic or extended) limit
// buy/sell order tx.
func ValidateLimitOrder(body *LimitOrderBody, operatorSig *OperatorSignaturePair, registry AssetRegistry, operators OperatorRegistry, cfg ValidationConfig) (*DexOperator, error) {
	in := orderValidationInput{
		coin:            body.CoinSymbol,
		asset:           body.AssetSymbol,
		orderType:       OrderTypeLimitPrice,
		rangedAmountSym: body.AssetSymbol,
		rangedAmount:    body.AssetAmount,
		price:           body.Price,
		operatorSig:     operatorSig,
	}
	if body.Extra != nil {
		in.mode = body.Extra.Mode
		in.dexID = body.Extra.DexId
		in.operatorFeeRatio = body.Extra.OperatorFeeRatio
	}
	return runOrderGauntlet(in, registry, operators, cfg)
}

// ValidateMarketBuyOrder runs the gauntlet for a market buy order tx.
func ValidateMarketBuyOrder(body *MarketBuyBody, operatorSig *OperatorSignaturePair, registry AssetRegistry, operators OperatorRegistry, cfg ValidationConfig) (*DexOperator, error) {
	in := orderValidationInput{
		coin:            body.CoinSymbol,
		asset:           body.AssetSymbol,
		orderType:       OrderTypeMarketPrice,
		rangedAmountSym: body.CoinSymbol,
		rangedAmount:    body.CoinAmount,
		operatorSig:     operatorSig,
	}
	if body.Extra != nil {
		in.mode = body.Extra.Mode
		in.dexID = body.Extra.DexId
		in.operatorFeeRatio = body.Extra.OperatorFeeRatio
	}
	return runOrderGauntlet(in, registry, operators, cfg)
}

// ValidateMarketSellOrder runs the gauntlet for a market sell order tx.
func ValidateMarketSellOrder(body *MarketSellBody, operatorSig *OperatorSignaturePair, registry AssetRegistry, operators OperatorRegistry, cfg ValidationConfig) (*DexOperator, error) {
	in := orderValidationInput{
		coin:            body.CoinSymbol,
		asset:           body.AssetSymbol,
		orderType:       OrderTypeMarketPrice,
		rangedAmountSym: body.AssetSymbol,
		rangedAmount:    body.AssetAmount,
		operatorSig:     operatorSig,
	}
	if body.Extra != nil {
		in.mode = body.Extra.Mode
		in.dexID = body.Extra.DexId
		in.operatorFeeRatio = body.Extra.OperatorFeeRatio
	}
	return runOrderGauntlet(in, registry, operators, cfg)
}

// ValidateSettleDispatch enforces the settlement engine's dispatcher
// authorization: tx_uid must equal DexOperator(dex_id).
// MatchRegId, or the hard-coded system-matcher regid for the reserved
// DEX.
func ValidateSettleDispatch(txUid regid.RegId, dexID uint32, operators OperatorRegistry, cfg ValidationConfig) error {
	if dexID == ReservedDexId {
		if txUid != cfg.SystemMatcherRegId {
			return settleErr(SettleErrUnauthorizedMatch, -1, "tx_uid is not the system matcher")
		}
		return nil
	}
	op, ok := operators.Get(dexID)
	if !ok {
		return settleErr(SettleErrUnauthorizedMatch, -1, "dex_id has no registered operator")
	}
	if txUid != op.MatchRegId {
		return settleErr(SettleErrUnauthorizedMatch, -1, "tx_uid is not the dex operator's match_regid")
	}
	return nil
}
