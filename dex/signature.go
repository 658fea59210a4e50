package dex

import (
	"crypto/ed25519"

	"github.com/waykidex/node/regid"
)

// SignatureVerifier is the narrow crypto interface the DEX subsystem
// consumes for signature verification. Only one suite is wired today
// (Ed25519); a second suite byte would slot in the same way without a
// wire-format change — see DESIGN.md "Open Questions resolved".
type SignatureVerifier interface {
	Verify(suite uint8, pubkey, sig []byte, digest [32]byte) (bool, error)
}

// Ed25519Verifier is the default, stdlib-backed SignatureVerifier.
type Ed25519Verifier struct{}

func (Ed25519Verifier) Verify(suite uint8, pubkey, sig []byte, digest [32]byte) (bool, error) {
	if suite != SuiteEd25519 {
		return false, codecErr(CodecErrUnknownEnum, "unsupported signature suite")
	}
	if len(pubkey) != ed25519.PublicKeySize {
		return false, nil
	}
	return ed25519.Verify(ed25519.PublicKey(pubkey), digest[:], sig), nil
}

// PubkeySource resolves an account's current public key and the suite
// byte it expects, keyed by RegId — narrow slice of the external
// account model this subsystem consumes.
type PubkeySource interface {
	PublicKey(r regid.RegId) (suite uint8, pubkey []byte, ok bool)
}

// VerifyUserSignature verifies tx's user Signature against tx.Common.TxUid's
// registered public key.
func VerifyUserSignature(verifier SignatureVerifier, pubkeys PubkeySource, tx *DexTx) error {
	digest, err := SighashDigest(tx)
	if err != nil {
		return err
	}
	suite, pubkey, ok := pubkeys.PublicKey(tx.Common.TxUid)
	if !ok {
		return txErr(TxErrBadSignature, "unknown signer account")
	}
	valid, err := verifier.Verify(suite, pubkey, tx.Signature, digest)
	if err != nil {
		return txErr(TxErrBadSignature, err.Error())
	}
	if !valid {
		return txErr(TxErrBadSignature, "user signature invalid")
	}
	return nil
}

// VerifyOperatorSignature verifies tx's OperatorSig against its own
// RegId's registered public key. Both user and operator
// signatures sign the same digest; either missing or mismatched is a
// BadSignature TxError.
func VerifyOperatorSignature(verifier SignatureVerifier, pubkeys PubkeySource, tx *DexTx) error {
	if tx.OperatorSig == nil {
		return txErr(TxErrBadSignature, "missing operator signature")
	}
	digest, err := SighashDigest(tx)
	if err != nil {
		return err
	}
	suite, pubkey, ok := pubkeys.PublicKey(tx.OperatorSig.RegId)
	if !ok {
		return txErr(TxErrBadSignature, "unknown operator account")
	}
	valid, err := verifier.Verify(suite, pubkey, tx.OperatorSig.Signature, digest)
	if err != nil {
		return txErr(TxErrBadSignature, err.Error())
	}
	if !valid {
		return txErr(TxErrBadSignature, "operator signature invalid")
	}
	return nil
}
