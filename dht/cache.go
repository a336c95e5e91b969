package dht

import (
	"time"

	"github.com/go-ringdht/ring"
)

const (
	cacheEntries  = 30
	cacheValidity = 2000 * time.Millisecond
)

// A cacheEntry records a second-hand claim: as of stamp, peer claimed
// responsibility for the identifiers just after predecessor. The zero
// value means "never populated" and sorts older than every real entry.
type cacheEntry struct {
	stamp       int64 // unix milliseconds
	predecessor ring.ID
	peer        ring.Peer
}

func (e *cacheEntry) outdated(now int64) bool {
	return now-e.stamp >= cacheValidity.Milliseconds()
}

// lookupCache is a fixed-capacity table of the most recent lookup
// replies. All scans run in physical slot order; eviction ties go to the
// lowest index. Callers hold the node lock.
type lookupCache struct {
	entries [cacheEntries]cacheEntry
}

// update records a reply claim. A slot already holding this peer is
// refreshed in place so repeated replies never duplicate an entry.
// Otherwise the slot with the smallest timestamp is overwritten: empty
// and expired slots carry the smallest timestamps, so they are sacrificed
// before any live entry.
func (c *lookupCache) update(predecessor ring.ID, peer ring.Peer, now int64) {
	for i := range c.entries {
		e := &c.entries[i]
		if e.peer.Equal(peer) && e.stamp < now {
			e.stamp = now
			e.predecessor = predecessor
			return
		}
	}

	oldest := 0
	for i := 1; i < len(c.entries); i++ {
		if c.entries[i].stamp < c.entries[oldest].stamp {
			oldest = i
		}
	}
	c.entries[oldest] = cacheEntry{stamp: now, predecessor: predecessor, peer: peer}
}

// scan returns the first fresh entry whose peer is responsible for id.
// Stale entries are skipped but stay in the table until eviction claims
// them.
func (c *lookupCache) scan(id ring.ID, now int64) (ring.Peer, bool) {
	for i := range c.entries {
		e := &c.entries[i]
		if e.outdated(now) {
			continue
		}
		if ring.IsResponsible(e.predecessor, e.peer.ID, id) {
			return e.peer, true
		}
	}
	return ring.Peer{}, false
}

func (c *lookupCache) populated() int {
	count := 0
	for i := range c.entries {
		if c.entries[i].stamp != 0 {
			count++
		}
	}
	return count
}
