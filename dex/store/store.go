// Package store provides a bbolt-backed implementation of dex.OrderStore
// and dex.OperatorRegistry: bucket-per-entity persistence for active
// orders, their originating order details, and registered DEX operators.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/waykidex/node/dex"
)

var (
	bucketActiveOrder = []byte("active_order")
	bucketOrderDetail = []byte("order_detail")
	bucketDexOperator = []byte("dex_operator")
)

// DB is the DEX subsystem's on-disk state: a single bbolt file holding
// the three buckets above.
type DB struct {
	path string
	db   *bolt.DB
}

// DataDir returns the DEX subsystem's on-disk directory under datadir.
func DataDir(datadir string) string {
	return filepath.Join(datadir, "dex")
}

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// Open opens (creating if absent) the DEX KV store under datadir.
func Open(datadir string) (*DB, error) {
	if datadir == "" {
		return nil, fmt.Errorf("datadir required")
	}
	dir := DataDir(datadir)
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "dex.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	d := &DB{path: path, db: bdb}
	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketActiveOrder, bucketOrderDetail, bucketDexOperator} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Path() string { return d.path }

func (d *DB) PutActiveOrder(orderID dex.TxId, a *dex.ActiveOrder) error {
	val := dex.EncodeActiveOrder(nil, a)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketActiveOrder).Put(orderID[:], val)
	})
}

func (d *DB) GetActiveOrder(orderID dex.TxId) (*dex.ActiveOrder, bool, error) {
	var out *dex.ActiveOrder
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketActiveOrder).Get(orderID[:])
		if v == nil {
			return nil
		}
		off := 0
		a, err := dex.DecodeActiveOrder(v, &off)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if out == nil {
		return nil, false, nil
	}
	return out, true, nil
}

func (d *DB) DeleteActiveOrder(orderID dex.TxId) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketActiveOrder).Delete(orderID[:])
	})
}

func (d *DB) PutOrderDetail(orderID dex.TxId, o *dex.OrderDetail) error {
	val := dex.EncodeOrderDetail(nil, o)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketOrderDetail).Put(orderID[:], val)
	})
}

func (d *DB) GetOrderDetail(orderID dex.TxId) (*dex.OrderDetail, bool, error) {
	var out *dex.OrderDetail
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketOrderDetail).Get(orderID[:])
		if v == nil {
			return nil
		}
		off := 0
		o, err := dex.DecodeOrderDetail(v, &off)
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if out == nil {
		return nil, false, nil
	}
	return out, true, nil
}

func (d *DB) DeleteOrderDetail(orderID dex.TxId) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketOrderDetail).Delete(orderID[:])
	})
}

func dexIDKey(dexID uint32) []byte {
	return dex.AppendVarint(nil, uint64(dexID))
}

// PutOperator inserts or replaces the operator record for op.DexId.
func (d *DB) PutOperator(op *dex.DexOperator) error {
	val := dex.EncodeDexOperator(nil, op)
	key := dexIDKey(op.DexId)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDexOperator).Put(key, val)
	})
}

// Get implements dex.OperatorRegistry.
func (d *DB) Get(dexID uint32) (*dex.DexOperator, bool) {
	key := dexIDKey(dexID)
	var out *dex.DexOperator
	_ = d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketDexOperator).Get(key)
		if v == nil {
			return nil
		}
		off := 0
		op, err := dex.DecodeDexOperator(v, &off)
		if err != nil {
			return err
		}
		out = op
		return nil
	})
	if out == nil {
		return nil, false
	}
	return out, true
}

// DeleteOperator removes dexID's operator record, if any.
func (d *DB) DeleteOperator(dexID uint32) error {
	key := dexIDKey(dexID)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDexOperator).Delete(key)
	})
}
