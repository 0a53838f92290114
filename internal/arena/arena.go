// Package arena retains raw instances of series whose display sets were
// built from incomplete data, so a later ingestion can rebuild them from
// everything received so far. Entries expire after a TTL via go-cache.
package arena

import (
	"reflect"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/OHIF/Viewers-sub030/pkg/instances"
)

// Arena is keyed by series and builder. It is safe for concurrent use;
// callers serialize updates of a single key.
type Arena struct {
	store *gocache.Cache
}

// Outcome describes the state of a key after Retain.
type Outcome struct {
	// Instances is everything retained for the key, in arrival order with
	// corrections applied in place.
	Instances []instances.Instance

	// Changed is true when Retain added or corrected at least one instance.
	Changed bool

	// Fresh is true when the key held nothing before this call.
	Fresh bool
}

// New creates an arena whose entries expire after ttl.
func New(ttl, cleanupInterval time.Duration) *Arena {
	return &Arena{store: gocache.New(ttl, cleanupInterval)}
}

// Key builds the arena key of a series and builder.
func Key(seriesUID, handlerID string) string {
	return seriesUID + "|" + handlerID
}

// Retain merges insts into the key by SOPInstanceUID. An instance whose UID
// is already held replaces the held one when its attributes differ.
func (a *Arena) Retain(key string, insts []instances.Instance) Outcome {
	var held []instances.Instance
	v, found := a.store.Get(key)
	if found {
		held, _ = v.([]instances.Instance)
	}

	merged := append([]instances.Instance(nil), held...)
	index := make(map[string]int, len(merged))
	for i, inst := range merged {
		index[inst.SOPInstanceUID()] = i
	}

	changed := false
	for _, inst := range insts {
		uid := inst.SOPInstanceUID()
		if i, ok := index[uid]; ok {
			if !reflect.DeepEqual(merged[i], inst) {
				merged[i] = inst
				changed = true
			}
			continue
		}
		index[uid] = len(merged)
		merged = append(merged, inst)
		changed = true
	}

	if changed || !found {
		a.store.Set(key, merged, gocache.DefaultExpiration)
	}
	return Outcome{Instances: merged, Changed: changed, Fresh: !found}
}

// Held returns what is retained for the key.
func (a *Arena) Held(key string) ([]instances.Instance, bool) {
	v, ok := a.store.Get(key)
	if !ok {
		return nil, false
	}
	held, ok := v.([]instances.Instance)
	return append([]instances.Instance(nil), held...), ok
}

// Release drops the key, typically once its sets are complete.
func (a *Arena) Release(key string) {
	a.store.Delete(key)
}

// Clear drops every key.
func (a *Arena) Clear() {
	a.store.Flush()
}

// Len returns the number of retained keys.
func (a *Arena) Len() int {
	return a.store.ItemCount()
}
