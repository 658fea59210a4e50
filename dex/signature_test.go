package dex_test

import (
	"crypto/ed25519"
	"testing"

	"github.com/waykidex/node/dex"
	"github.com/waykidex/node/regid"
)

type fakePubkeySource struct {
	keys map[regid.RegId]ed25519.PublicKey
}

func newFakePubkeySource() *fakePubkeySource {
	return &fakePubkeySource{keys: make(map[regid.RegId]ed25519.PublicKey)}
}

func (f *fakePubkeySource) set(r regid.RegId, pub ed25519.PublicKey) {
	f.keys[r] = pub
}

func (f *fakePubkeySource) PublicKey(r regid.RegId) (uint8, []byte, bool) {
	pub, ok := f.keys[r]
	if !ok {
		return 0, nil, false
	}
	return dex.SuiteEd25519, pub, true
}

func testTx() *dex.DexTx {
	return &dex.DexTx{
		Common: dex.TxCommon{
			Version:     1,
			TxType:      dex.TxTypeLimitBuyOrder,
			ValidHeight: 10,
			TxUid:       regid.RegId{Height: 1, Index: 1},
			FeeSymbol:   "WICC",
			Fees:        100,
		},
		LimitBuy: &dex.LimitOrderBody{
			CoinSymbol:  "WUSD",
			AssetSymbol: "WICC",
			AssetAmount: 100,
			Price:       dex.PriceBoost,
		},
	}
}

func TestVerifyUserSignatureValid(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	tx := testTx()
	digest, err := dex.SighashDigest(tx)
	if err != nil {
		t.Fatalf("SighashDigest: %v", err)
	}
	tx.Signature = ed25519.Sign(priv, digest[:])

	pubkeys := newFakePubkeySource()
	pubkeys.set(tx.Common.TxUid, pub)

	if err := dex.VerifyUserSignature(dex.Ed25519Verifier{}, pubkeys, tx); err != nil {
		t.Fatalf("VerifyUserSignature: %v", err)
	}
}

func TestVerifyUserSignatureRejectsTamperedTx(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	tx := testTx()
	digest, err := dex.SighashDigest(tx)
	if err != nil {
		t.Fatalf("SighashDigest: %v", err)
	}
	tx.Signature = ed25519.Sign(priv, digest[:])
	tx.LimitBuy.AssetAmount = 999 // tamper after signing

	pubkeys := newFakePubkeySource()
	pubkeys.set(tx.Common.TxUid, pub)

	if err := dex.VerifyUserSignature(dex.Ed25519Verifier{}, pubkeys, tx); err == nil {
		t.Fatalf("expected tampered tx to fail signature verification")
	}
}

func TestVerifyUserSignatureUnknownSigner(t *testing.T) {
	tx := testTx()
	tx.Signature = []byte{1, 2, 3}
	pubkeys := newFakePubkeySource()
	if err := dex.VerifyUserSignature(dex.Ed25519Verifier{}, pubkeys, tx); err == nil {
		t.Fatalf("expected unknown signer to be rejected")
	}
}

func TestVerifyOperatorSignatureMissing(t *testing.T) {
	tx := testTx()
	pubkeys := newFakePubkeySource()
	if err := dex.VerifyOperatorSignature(dex.Ed25519Verifier{}, pubkeys, tx); err == nil {
		t.Fatalf("expected missing operator signature to be rejected")
	}
}

func TestVerifyOperatorSignatureValid(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	tx := testTx()
	tx.Common.TxType = dex.TxTypeLimitBuyOrderEx
	opRegID := regid.RegId{Height: 2, Index: 2}
	tx.LimitBuy.Extra = &dex.ExtraFields{OperatorRegId: opRegID}

	digest, err := dex.SighashDigest(tx)
	if err != nil {
		t.Fatalf("SighashDigest: %v", err)
	}
	tx.OperatorSig = &dex.OperatorSignaturePair{
		RegId:     opRegID,
		Signature: ed25519.Sign(priv, digest[:]),
	}

	pubkeys := newFakePubkeySource()
	pubkeys.set(opRegID, pub)
	if err := dex.VerifyOperatorSignature(dex.Ed25519Verifier{}, pubkeys, tx); err != nil {
		t.Fatalf("VerifyOperatorSignature: %v", err)
	}
}

func TestEd25519VerifierRejectsUnknownSuite(t *testing.T) {
	if _, err := (dex.Ed25519Verifier{}).Verify(0xFF, nil, nil, [32]byte{}); err == nil {
		t.Fatalf("expected unsupported suite to error")
	}
}
