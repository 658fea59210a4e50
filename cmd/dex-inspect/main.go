// Command dex-inspect decodes a raw DEX transaction and prints its
// fields and signature-hash digest as JSON, for manual wire-format
// debugging.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/waykidex/node/dex"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type txTypeName struct {
	Code uint8
	Name string
}

var txTypeNames = []txTypeName{
	{dex.TxTypeLimitBuyOrder, "limit_buy"},
	{dex.TxTypeLimitSellOrder, "limit_sell"},
	{dex.TxTypeMarketBuyOrder, "market_buy"},
	{dex.TxTypeMarketSellOrder, "market_sell"},
	{dex.TxTypeLimitBuyOrderEx, "limit_buy_ex"},
	{dex.TxTypeLimitSellOrderEx, "limit_sell_ex"},
	{dex.TxTypeMarketBuyOrderEx, "market_buy_ex"},
	{dex.TxTypeMarketSellOrderEx, "market_sell_ex"},
	{dex.TxTypeCancelOrder, "cancel_order"},
	{dex.TxTypeTradeSettle, "trade_settle"},
	{dex.TxTypeTradeSettleEx, "trade_settle_ex"},
}

func txTypeLabel(code uint8) string {
	for _, n := range txTypeNames {
		if n.Code == code {
			return n.Name
		}
	}
	return fmt.Sprintf("unknown(0x%02x)", code)
}

// inspectResult is the CLI's JSON output shape.
type inspectResult struct {
	TxType      string `json:"tx_type"`
	Extended    bool   `json:"extended"`
	Version     uint32 `json:"version"`
	ValidHeight uint64 `json:"valid_height"`
	TxUid       string `json:"tx_uid"`
	FeeSymbol   string `json:"fee_symbol"`
	Fees        uint64 `json:"fees"`

	OperatorDexId  *uint32 `json:"operator_dex_id,omitempty"`
	OperatorMode   *uint8  `json:"operator_mode,omitempty"`
	OperatorRegId  string  `json:"operator_regid,omitempty"`

	SighashDigestHex string `json:"sighash_digest"`
	SignaturePresent bool   `json:"signature_present"`
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dex-inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	txHex := fs.String("tx-hex", "", "hex-encoded raw transaction (reads stdin if empty)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	raw := *txHex
	if raw == "" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(stderr, "read stdin: %v\n", err)
			return 2
		}
		raw = string(b)
	}
	raw = trimHex(raw)

	blob, err := hex.DecodeString(raw)
	if err != nil {
		fmt.Fprintf(stderr, "invalid hex: %v\n", err)
		return 2
	}

	tx, err := dex.DecodeTx(blob)
	if err != nil {
		fmt.Fprintf(stderr, "decode failed: %v\n", err)
		return 1
	}

	digest, err := dex.SighashDigest(tx)
	if err != nil {
		fmt.Fprintf(stderr, "sighash failed: %v\n", err)
		return 1
	}

	result := inspectResult{
		TxType:           txTypeLabel(tx.Common.TxType),
		Extended:         tx.IsExtended(),
		Version:          tx.Common.Version,
		ValidHeight:      tx.Common.ValidHeight,
		TxUid:            tx.Common.TxUid.String(),
		FeeSymbol:        string(tx.Common.FeeSymbol),
		Fees:             tx.Common.Fees,
		SighashDigestHex: hex.EncodeToString(digest[:]),
		SignaturePresent: len(tx.Signature) > 0,
	}
	if extra := tx.Extra(); extra != nil {
		dexID := extra.DexId
		mode := uint8(extra.Mode)
		result.OperatorDexId = &dexID
		result.OperatorMode = &mode
		result.OperatorRegId = extra.OperatorRegId.String()
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(stderr, "encode failed: %v\n", err)
		return 1
	}
	return 0
}

func trimHex(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
			out = append(out, c)
		}
	}
	return string(out)
}
