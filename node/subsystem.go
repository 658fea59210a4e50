package node

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/waykidex/node/dex"
	"github.com/waykidex/node/regid"
)

// Subsystem bundles the DEX core's policy config with its logger, built
// from a validated Config.
type Subsystem struct {
	Validation dex.ValidationConfig
	Settlement dex.SettlementConfig
	Logger     *zap.Logger
}

func buildValidationConfig(cfg Config) (dex.ValidationConfig, error) {
	var systemMatcher regid.RegId
	if cfg.SystemMatcherRegId != "" {
		r, err := regid.Parse(cfg.SystemMatcherRegId)
		if err != nil {
			return dex.ValidationConfig{}, fmt.Errorf("system_matcher_regid: %w", err)
		}
		systemMatcher = r
	}
	vc := dex.DefaultValidationConfig(systemMatcher)
	vc.OperatorFeeRatioCap = cfg.OperatorFeeRatioCap
	return vc, nil
}

// BuildSettlementConfig derives a dex.SettlementConfig from cfg,
// parsing its regid fields.
func BuildSettlementConfig(cfg Config) (dex.SettlementConfig, error) {
	vc, err := buildValidationConfig(cfg)
	if err != nil {
		return dex.SettlementConfig{}, err
	}
	var riskReserve regid.RegId
	if cfg.RiskReserveRegId != "" {
		r, err := regid.Parse(cfg.RiskReserveRegId)
		if err != nil {
			return dex.SettlementConfig{}, fmt.Errorf("risk_reserve_regid: %w", err)
		}
		riskReserve = r
	}
	return dex.SettlementConfig{
		ValidationConfig:   vc,
		RiskReserveRegId:   riskReserve,
		MinViableTradeCoin: dex.Amount(cfg.MinViableTradeCoin),
	}, nil
}

// NewSubsystem validates cfg and builds the DEX core's policy config
// and logger from it.
func NewSubsystem(cfg Config) (*Subsystem, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	settlement, err := BuildSettlementConfig(cfg)
	if err != nil {
		return nil, err
	}
	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	return &Subsystem{
		Validation: settlement.ValidationConfig,
		Settlement: settlement,
		Logger:     logger,
	}, nil
}

// SettleBatch runs dex.SettleDeals for one settle tx, stamping the
// attempt with a correlation ID for operators tracing a rejected batch
// through logs. The correlation ID and CorrelationHash are purely
// diagnostic: neither influences the settlement outcome. On failure the
// returned error wraps the one SettleDeals produced, prefixed with the
// correlation ID.
func (s *Subsystem) SettleBatch(dispatcherUid regid.RegId, dispatcherDexID uint32, items []dex.DealItem, operators dex.OperatorRegistry, store dex.OrderStore, ledger dex.AccountLedger) error {
	correlationID := uuid.New().String()
	corrHash := dex.CorrelationHash(dispatcherDexID, items)

	err := dex.SettleDeals(dispatcherUid, dispatcherDexID, items, operators, store, ledger, s.Settlement)
	if err != nil {
		s.Logger.Warn("settle batch rejected",
			zap.String("correlation_id", correlationID),
			zap.String("correlation_hash", fmt.Sprintf("%x", corrHash)),
			zap.Uint32("dex_id", dispatcherDexID),
			zap.Int("deal_items", len(items)),
			zap.Error(err),
		)
		return fmt.Errorf("settle batch %s: %w", correlationID, err)
	}

	s.Logger.Info("settle batch applied",
		zap.String("correlation_id", correlationID),
		zap.String("correlation_hash", fmt.Sprintf("%x", corrHash)),
		zap.Uint32("dex_id", dispatcherDexID),
		zap.Int("deal_items", len(items)),
	)
	return nil
}
