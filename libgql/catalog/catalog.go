// Package catalog keeps every canonical representative the worker has emitted, across cycles.
//
// Database format:
//
//	gCatalogStateKey                  => CatalogState
//	gGraphKeyPrefix, GraphEncoding    => GraphEntry
//
// GraphEncoding is libgql.Graph.AppendEncoding() of the canonically labeled graph.
package catalog

import (
	"fmt"
	"runtime"

	"github.com/2x3systems/gqlrules/gql"
	"github.com/2x3systems/gqlrules/libgql"
	"github.com/dgraph-io/badger/v4"
	proto "github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
	gGraphKeyPrefix  = []byte{0x01}
)

const (
	catalogMajorVers = 2024
	catalogMinorVers = 1
)

// Opts specifies params for opening a Catalog.
type Opts struct {
	DbPathName string // if empty, the catalog is held in memory
	ReadOnly   bool
}

// Catalog is a db wrapper for the set of emitted representatives.
type Catalog struct {
	readOnly   bool
	stateDirty bool
	state      CatalogState
	db         *badger.DB
}

// klogAdapter routes badger's log output through klog.
type klogAdapter struct{}

func (klogAdapter) Errorf(format string, args ...interface{}) {
	klog.Errorf("badger: "+format, args...)
}

func (klogAdapter) Warningf(format string, args ...interface{}) {
	klog.Warningf("badger: "+format, args...)
}

func (klogAdapter) Infof(format string, args ...interface{}) {
	klog.V(2).Infof("badger: "+format, args...)
}

func (klogAdapter) Debugf(format string, args ...interface{}) {
	klog.V(3).Infof("badger: "+format, args...)
}

func Open(opts Opts) (*Catalog, error) {
	if len(opts.DbPathName) == 0 && opts.ReadOnly {
		return nil, errors.Wrap(gql.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // single writer
	dbOpts.MetricsEnabled = false
	dbOpts.Logger = klogAdapter{}

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}
	if len(opts.DbPathName) == 0 {
		dbOpts.InMemory = true
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(gql.ErrFile, "open catalog: %v", err)
	}

	cat := &Catalog{
		readOnly: opts.ReadOnly,
		db:       db,
	}

	err = cat.loadState()
	if errors.Is(err, badger.ErrKeyNotFound) {
		err = nil
		cat.stateDirty = true
		cat.state.MajorVers = catalogMajorVers
		cat.state.MinorVers = catalogMinorVers
	}
	if err == nil && (cat.state.MajorVers != catalogMajorVers || cat.state.MinorVers != catalogMinorVers) {
		err = errors.Wrapf(gql.ErrBadCatalogParam, "catalog version %d.%d is incompatible", cat.state.MajorVers, cat.state.MinorVers)
	}
	if err != nil {
		cat.Close()
		return nil, err
	}

	return cat, nil
}

func (cat *Catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return proto.Unmarshal(val, &cat.state)
		})
	})
}

func (cat *Catalog) flushState() error {
	if !cat.stateDirty || cat.readOnly {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		stateBuf, err := proto.Marshal(&cat.state)
		if err != nil {
			return err
		}
		return txn.Set(gCatalogStateKey, stateBuf)
	})
	if err != nil {
		return errors.Wrapf(gql.ErrFile, "flush catalog state: %v", err)
	}
	cat.stateDirty = false
	return nil
}

func (cat *Catalog) Close() error {
	var err error
	if cat.db != nil {
		err = cat.flushState()
		cat.db.Close()
		cat.db = nil
	}
	return err
}

// State returns a copy of the catalog's bookkeeping record.
func (cat *Catalog) State() CatalogState {
	return cat.state
}

func (cat *Catalog) NumGraphs() int64 {
	return int64(cat.state.NumGraphs)
}

func formGraphKey(X *libgql.Graph) []byte {
	var scrap [256]byte
	key := append(scrap[:0], gGraphKeyPrefix...)
	return X.AppendEncoding(key)
}

// TryAddGraph records the canonically labeled graph X, emitted as representative idx of the current cycle.
// Returns true if X was not already catalogued.
func (cat *Catalog) TryAddGraph(X *libgql.Graph, idx int) (bool, error) {
	if cat.readOnly {
		return false, errors.Wrap(gql.ErrBadCatalogParam, "catalog is read-only")
	}

	key := formGraphKey(X)
	added := false
	err := cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		entry := GraphEntry{
			Cycle:    cat.state.NumCycles + 1,
			Index:    int32(idx),
			NumVerts: int32(X.NumVerts()),
			NumEdges: int32(X.NumEdges()),
		}
		val, err := proto.Marshal(&entry)
		if err != nil {
			return err
		}
		added = true
		return txn.Set(key, val)
	})
	if err != nil {
		return false, errors.Wrapf(gql.ErrFile, "catalog add: %v", err)
	}
	if added {
		cat.state.NumGraphs++
		cat.stateDirty = true
	}
	return added, nil
}

// Lookup returns the entry for the canonically labeled graph X, if present.
func (cat *Catalog) Lookup(X *libgql.Graph) (entry GraphEntry, found bool, err error) {
	err = cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(formGraphKey(X))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return proto.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return entry, false, nil
	}
	if err != nil {
		return entry, false, errors.Wrapf(gql.ErrFile, "catalog lookup: %v", err)
	}
	return entry, true, nil
}

// Select calls onGraph with each catalogued graph, in key order, until onGraph returns false.
// X is reused between calls; copy it to retain it.
func (cat *Catalog) Select(onGraph func(X *libgql.Graph, entry GraphEntry) bool) error {
	X := libgql.NewGraph(0)
	defer X.Reclaim()

	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   100,
		Prefix:         gGraphKeyPrefix,
	})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		key := item.Key()
		if err := X.InitFromEncoding(key[len(gGraphKeyPrefix):]); err != nil {
			return errors.Wrapf(err, "catalog key %x", key)
		}
		var entry GraphEntry
		err := item.Value(func(val []byte) error {
			return proto.Unmarshal(val, &entry)
		})
		if err != nil {
			return errors.Wrapf(gql.ErrFile, "catalog value: %v", err)
		}
		if !onGraph(X, entry) {
			break
		}
	}
	return nil
}

// EndCycle folds the cycle's stats into the catalog state and flushes it.
func (cat *Catalog) EndCycle(stats *gql.CycleStats) error {
	cat.state.NumCycles++
	cat.state.NumCandidates += uint64(stats.Candidates)
	cat.state.NumCoefficients += uint64(len(stats.Coefficients))
	cat.stateDirty = true
	return cat.flushState()
}

func (cat *Catalog) String() string {
	return fmt.Sprintf("catalog{cycles=%d graphs=%d candidates=%d}", cat.state.NumCycles, cat.state.NumGraphs, cat.state.NumCandidates)
}
