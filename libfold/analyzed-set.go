package libfold

import (
	"encoding/binary"
	"sync"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
)

// NewAnalyzedSet returns an empty hyperfold.AnalyzedSet over the given grid.
// Members are held in an in-memory LSM keyed by grid tick so that Temps() comes back ordered.
func NewAnalyzedSet(grid hyperfold.Grid) hyperfold.AnalyzedSet {
	return &analyzedSet{
		grid: grid,
	}
}

type analyzedSet struct {
	mu    sync.Mutex
	grid  hyperfold.Grid
	db    *badger.DB
	count int
}

// tickKey maps a tick onto 8 bytes whose lexical order matches numeric order.
func tickKey(tick int64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], uint64(tick)^(1<<63))
	return key[:]
}

func keyTick(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key) ^ (1 << 63))
}

func (set *analyzedSet) autoOpen() {
	if set.db == nil {
		dbOpts := badger.DefaultOptions("").WithInMemory(true)
		dbOpts.Logger = nil
		dbOpts.MetricsEnabled = false

		var err error
		set.db, err = badger.Open(dbOpts)
		if err != nil {
			panic(err)
		}
	}
}

func (set *analyzedSet) Add(t hyperfold.Temp) bool {
	tick, ok := set.grid.Tick(t)
	if !ok {
		return false
	}

	set.mu.Lock()
	defer set.mu.Unlock()
	set.autoOpen()

	txn := set.db.NewTransaction(true)
	defer txn.Discard()

	key := tickKey(tick)
	added := false
	_, err := txn.Get(key)
	if err == nil {
		// already present
	} else if errors.Is(err, badger.ErrKeyNotFound) {
		if err = txn.Set(key, nil); err == nil {
			err = txn.Commit()
			added = err == nil
		}
	}
	if err != nil {
		panic(err)
	}

	if added {
		set.count++
	}
	return added
}

func (set *analyzedSet) Contains(t hyperfold.Temp) bool {
	tick, ok := set.grid.Tick(t)
	if !ok {
		return false
	}

	set.mu.Lock()
	defer set.mu.Unlock()
	if set.db == nil {
		return false
	}

	found := false
	err := set.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(tickKey(tick))
		if err == nil {
			found = true
			return nil
		}
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		panic(err)
	}
	return found
}

func (set *analyzedSet) Temps() []hyperfold.Temp {
	set.mu.Lock()
	defer set.mu.Unlock()
	if set.db == nil {
		return nil
	}

	temps := make([]hyperfold.Temp, 0, set.count)
	err := set.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		itr := txn.NewIterator(opts)
		defer itr.Close()

		for itr.Rewind(); itr.Valid(); itr.Next() {
			temps = append(temps, set.grid.Temp(keyTick(itr.Item().Key())))
		}
		return nil
	})
	if err != nil {
		panic(err)
	}
	return temps
}

func (set *analyzedSet) Len() int {
	set.mu.Lock()
	defer set.mu.Unlock()
	return set.count
}

// Close removes all members.  The set may be reused afterwards.
func (set *analyzedSet) Close() error {
	set.mu.Lock()
	defer set.mu.Unlock()

	var err error
	if set.db != nil {
		err = set.db.Close()
		set.db = nil
		set.count = 0
	}
	return err
}
