package dex

import "golang.org/x/crypto/sha3"

// CorrelationHash derives a non-consensus digest over a settle tx's
// dispatch dex_id and deal items, for use as a store/telemetry lookup
// key. It is never part of SighashDigest and must never gate validation
// or settlement outcome.
func CorrelationHash(dispatcherDexID uint32, items []DealItem) [32]byte {
	buf := AppendVarint(nil, uint64(dispatcherDexID))
	buf = AppendVecLen(buf, len(items))
	for i := range items {
		buf = EncodeDealItem(buf, &items[i])
	}
	return sha3.Sum256(buf)
}
