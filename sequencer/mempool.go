package sequencer

import (
	"sync"

	bloomfilter "github.com/holiman/bloomfilter/v2"
)

// DefaultMempoolCapacity is spec.md §4.4's documented default ("bounded
// (default 10,000)").
const DefaultMempoolCapacity = 10000

// mempoolBloomBits sizes the duplicate-id prefilter generously relative
// to the default capacity, matching the teacher's pattern of a static,
// generously-sized bloom filter rather than a dynamically resized one.
const mempoolBloomBits = 1 << 20

// Mempool is a bounded, FIFO encrypted-transaction queue. A bloom-filter
// prefilter gives submit_encrypted a fast, approximate duplicate-id
// rejection before the exact map lookup, the same two-stage shape the
// teacher's batching code uses for cheap pre-checks ahead of exact work.
type Mempool struct {
	mu       sync.Mutex
	capacity int
	order    []string
	byID     map[string]EncryptedTx
	seen     *bloomfilter.Filter
}

// NewMempool constructs a Mempool bounded at capacity entries.
func NewMempool(capacity int) *Mempool {
	if capacity <= 0 {
		capacity = DefaultMempoolCapacity
	}
	filter, _ := bloomfilter.New(mempoolBloomBits, 4)
	return &Mempool{capacity: capacity, byID: make(map[string]EncryptedTx, capacity), seen: filter}
}

// Submit appends tx to the mempool (spec.md §4.4 submit_encrypted()).
// Overflow returns ErrMempoolFull; a duplicate id is a silent no-op,
// matching an idempotent resubmission rather than an error condition.
func (m *Mempool) Submit(tx EncryptedTx) error {
	key := bloomKey(tx.ID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seen.Contains(key) {
		if _, exists := m.byID[tx.ID]; exists {
			return nil
		}
	}
	if len(m.order) >= m.capacity {
		return ErrMempoolFull
	}
	m.byID[tx.ID] = tx
	m.order = append(m.order, tx.ID)
	m.seen.Add(key)
	return nil
}

// Drain removes and returns up to n transactions in FIFO submission
// order (spec.md §4.4 step 1: "drain up to batch_size").
func (m *Mempool) Drain(n int) []EncryptedTx {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.order) {
		n = len(m.order)
	}
	out := make([]EncryptedTx, 0, n)
	for _, id := range m.order[:n] {
		out = append(out, m.byID[id])
		delete(m.byID, id)
	}
	m.order = m.order[n:]
	return out
}

// restoreToHead reinstates tx at the front of the mempool, used to undo a
// Drain when a batch-assembly attempt is cancelled or fails before the
// drained transactions are committed anywhere (spec.md §5: "transactions
// drained pre-sign are returned to the head of the mempool on cancel").
func (m *Mempool) restoreToHead(tx EncryptedTx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[tx.ID]; exists {
		return nil
	}
	if len(m.order) >= m.capacity {
		return ErrMempoolFull
	}
	m.byID[tx.ID] = tx
	m.order = append([]string{tx.ID}, m.order...)
	key := bloomKey(tx.ID)
	m.seen.Add(key)
	return nil
}

// Len reports the mempool's current occupancy.
func (m *Mempool) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

func bloomKey(id string) uint64 {
	var h uint64 = 1469598103934665603 // FNV-1a offset basis
	for i := 0; i < len(id); i++ {
		h ^= uint64(id[i])
		h *= 1099511628211
	}
	return h
}
