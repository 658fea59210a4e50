package node

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/waykidex/node/dex"
	"github.com/waykidex/node/dex/memstore"
	"github.com/waykidex/node/regid"
)

func TestNewSubsystemBuildsValidationAndSettlementConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SystemMatcherRegId = "5-1"
	cfg.RiskReserveRegId = "9-1"

	sub, err := NewSubsystem(cfg)
	if err != nil {
		t.Fatalf("NewSubsystem: %v", err)
	}
	if sub.Settlement.RiskReserveRegId != (regid.RegId{Height: 9, Index: 1}) {
		t.Fatalf("RiskReserveRegId = %+v, want 9-1", sub.Settlement.RiskReserveRegId)
	}
	if sub.Settlement.MinViableTradeCoin != dex.Amount(cfg.MinViableTradeCoin) {
		t.Fatalf("MinViableTradeCoin = %d, want %d", sub.Settlement.MinViableTradeCoin, cfg.MinViableTradeCoin)
	}
}

func TestNewSubsystemRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	if _, err := NewSubsystem(cfg); err == nil {
		t.Fatalf("expected invalid config to be rejected")
	}
}

func withObservedLogger(sub *Subsystem) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.InfoLevel)
	sub.Logger = zap.New(core)
	return logs
}

func TestSettleBatchLogsCorrelationIDOnSuccess(t *testing.T) {
	cfg := DefaultConfig()
	sub, err := NewSubsystem(cfg)
	if err != nil {
		t.Fatalf("NewSubsystem: %v", err)
	}
	logs := withObservedLogger(sub)

	ledger := memstore.NewLedger()
	store := memstore.NewOrderStore()
	operators := memstore.NewOperators()
	buyer := regid.RegId{Height: 1, Index: 1}
	seller := regid.RegId{Height: 2, Index: 1}
	ledger.Credit(buyer, "WUSD", 10_000)
	ledger.Credit(seller, "WICC", 1_000)

	buy, err := dex.NewUserBuyLimit(dex.OperatorModeDefault, dex.ReservedDexId, 0, "WUSD", "WICC", 100, dex.PriceBoost, dex.TxCord{BlockHeight: 1, BlockIndex: 0}, buyer)
	if err != nil {
		t.Fatalf("NewUserBuyLimit: %v", err)
	}
	sell, err := dex.NewUserSellLimit(dex.OperatorModeDefault, dex.ReservedDexId, 0, "WUSD", "WICC", 100, dex.PriceBoost, dex.TxCord{BlockHeight: 1, BlockIndex: 1}, seller)
	if err != nil {
		t.Fatalf("NewUserSellLimit: %v", err)
	}
	buyID, sellID := dex.TxId{1}, dex.TxId{2}
	if err := dex.PlaceOrder(buy, buyID, ledger, store); err != nil {
		t.Fatalf("PlaceOrder(buy): %v", err)
	}
	if err := dex.PlaceOrder(sell, sellID, ledger, store); err != nil {
		t.Fatalf("PlaceOrder(sell): %v", err)
	}

	items := []dex.DealItem{
		{BuyOrderId: buyID, SellOrderId: sellID, DealPrice: dex.PriceBoost, DealCoinAmount: 100, DealAssetAmount: 100},
	}
	if err := sub.SettleBatch(regid.RegId{}, dex.ReservedDexId, items, operators, store, ledger); err != nil {
		t.Fatalf("SettleBatch: %v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one log entry, got %d", len(entries))
	}
	if entries[0].Message != "settle batch applied" {
		t.Fatalf("log message = %q", entries[0].Message)
	}
	if _, ok := entries[0].ContextMap()["correlation_id"]; !ok {
		t.Fatalf("expected correlation_id field in log entry")
	}
}

func TestSettleBatchLogsAndWrapsErrorOnFailure(t *testing.T) {
	cfg := DefaultConfig()
	sub, err := NewSubsystem(cfg)
	if err != nil {
		t.Fatalf("NewSubsystem: %v", err)
	}
	logs := withObservedLogger(sub)

	ledger := memstore.NewLedger()
	store := memstore.NewOrderStore()
	operators := memstore.NewOperators()

	items := []dex.DealItem{
		{BuyOrderId: dex.TxId{9}, SellOrderId: dex.TxId{10}, DealPrice: dex.PriceBoost, DealCoinAmount: 1, DealAssetAmount: 1},
	}
	err = sub.SettleBatch(regid.RegId{}, dex.ReservedDexId, items, operators, store, ledger)
	if err == nil {
		t.Fatalf("expected SettleBatch to fail for unknown orders")
	}

	entries := logs.All()
	if len(entries) != 1 || entries[0].Message != "settle batch rejected" {
		t.Fatalf("expected a single 'settle batch rejected' log entry, got %+v", entries)
	}
	if _, ok := entries[0].ContextMap()["correlation_id"]; !ok {
		t.Fatalf("expected correlation_id field in log entry")
	}
}
