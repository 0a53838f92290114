// Package displayset defines the renderable unit produced by builders.
package displayset

import (
	"encoding/json"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/OHIF/Viewers-sub030/pkg/constants"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
	"github.com/OHIF/Viewers-sub030/pkg/messages"
)

// DisplaySet is a stable, addressable grouping of instances or frame records
// made by exactly one builder. Identity fields are fixed at construction;
// the instance list, settings and flags are guarded for concurrent use.
type DisplaySet struct {
	uid       string
	createdAt time.Time

	StudyInstanceUID  string
	SeriesInstanceUID string
	Modality          string
	SeriesDescription string
	SeriesNumber      string

	// HandlerID is the id of the builder that produced the set.
	HandlerID string

	// MadeInClient marks sets synthesized locally rather than derived from
	// retrieved metadata.
	MadeInClient bool

	// Unsupported marks sets made by the fallback builder.
	Unsupported bool

	// Messages holds the diagnostics attached by the builder.
	Messages *messages.Ledger

	loaded atomic.Bool

	mu          sync.RWMutex
	instances   []instances.Instance
	settings    map[string]any
	provisional bool
}

// New creates a display set from the given records. Series identity is read
// from the first record.
func New(records []instances.Instance) *DisplaySet {
	ds := &DisplaySet{
		uid:       uuid.NewString(),
		createdAt: time.Now(),
		Messages:  messages.NewLedger(),
		instances: append([]instances.Instance(nil), records...),
		settings:  make(map[string]any),
	}
	if len(records) > 0 {
		first := records[0]
		ds.StudyInstanceUID = first.StudyInstanceUID()
		ds.SeriesInstanceUID = first.SeriesInstanceUID()
		ds.Modality = first.Modality()
		ds.SeriesDescription = first.String(constants.SeriesDescription)
		ds.SeriesNumber = first.String(constants.SeriesNumber)
	}
	return ds
}

// UID returns the displaySetInstanceUID.
func (ds *DisplaySet) UID() string { return ds.uid }

// CreatedAt returns the construction time.
func (ds *DisplaySet) CreatedAt() time.Time { return ds.createdAt }

// IsLoaded reports the loaded flag.
func (ds *DisplaySet) IsLoaded() bool { return ds.loaded.Load() }

// SetLoaded sets the loaded flag.
func (ds *DisplaySet) SetLoaded(v bool) { ds.loaded.Store(v) }

// Instances returns a copy of the ordered records.
func (ds *DisplaySet) Instances() []instances.Instance {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return append([]instances.Instance(nil), ds.instances...)
}

// Len returns the number of records.
func (ds *DisplaySet) Len() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return len(ds.instances)
}

// SOPInstanceUIDs returns the distinct SOPInstanceUIDs backing the set in
// first-seen order. Frames of one instance share its UID.
func (ds *DisplaySet) SOPInstanceUIDs() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	seen := make(map[string]struct{}, len(ds.instances))
	var out []string
	for _, inst := range ds.instances {
		uid := inst.SOPInstanceUID()
		if _, ok := seen[uid]; ok || uid == "" {
			continue
		}
		seen[uid] = struct{}{}
		out = append(out, uid)
	}
	return out
}

// HasSOPInstanceUID reports whether any record carries uid.
func (ds *DisplaySet) HasSOPInstanceUID(uid string) bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	for _, inst := range ds.instances {
		if inst.SOPInstanceUID() == uid {
			return true
		}
	}
	return false
}

// AppendInstances grows the set in place.
func (ds *DisplaySet) AppendInstances(records ...instances.Instance) {
	ds.mu.Lock()
	ds.instances = append(ds.instances, records...)
	ds.mu.Unlock()
}

// SetInstances replaces the record list, e.g. after a builder re-sorts it.
func (ds *DisplaySet) SetInstances(records []instances.Instance) {
	ds.mu.Lock()
	ds.instances = append([]instances.Instance(nil), records...)
	ds.mu.Unlock()
}

// Settings returns a copy of the viewport hints.
func (ds *DisplaySet) Settings() map[string]any {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return maps.Clone(ds.settings)
}

// MergeSettings shallow-merges each key onto the set's settings.
func (ds *DisplaySet) MergeSettings(settings map[string]any) {
	if len(settings) == 0 {
		return
	}
	ds.mu.Lock()
	maps.Copy(ds.settings, settings)
	ds.mu.Unlock()
}

// Provisional reports whether the backing data is known to be incomplete.
func (ds *DisplaySet) Provisional() bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.provisional
}

// SetProvisional marks the set as built from incomplete data.
func (ds *DisplaySet) SetProvisional(v bool) {
	ds.mu.Lock()
	ds.provisional = v
	ds.mu.Unlock()
}

// Refine takes the records and provisional flag of a rebuilt set and adds
// the rebuilt set's messages whose code is not yet attached. Identity,
// settings, other flags and existing messages are kept.
func (ds *DisplaySet) Refine(from *DisplaySet) {
	if from == nil || from == ds {
		return
	}
	records := from.Instances()
	provisional := from.Provisional()

	ds.mu.Lock()
	ds.instances = records
	ds.provisional = provisional
	ds.mu.Unlock()

	ds.Messages.Merge(from.Messages)
}

// Snapshot is the serializable view of a display set.
type Snapshot struct {
	DisplaySetInstanceUID string             `json:"displaySetInstanceUID" yaml:"displaySetInstanceUID"`
	StudyInstanceUID      string             `json:"StudyInstanceUID" yaml:"StudyInstanceUID"`
	SeriesInstanceUID     string             `json:"SeriesInstanceUID" yaml:"SeriesInstanceUID"`
	Modality              string             `json:"Modality,omitempty" yaml:"Modality,omitempty"`
	SeriesDescription     string             `json:"SeriesDescription,omitempty" yaml:"SeriesDescription,omitempty"`
	SeriesNumber          string             `json:"SeriesNumber,omitempty" yaml:"SeriesNumber,omitempty"`
	HandlerID             string             `json:"handlerId" yaml:"handlerId"`
	NumInstances          int                `json:"numInstances" yaml:"numInstances"`
	SOPInstanceUIDs       []string           `json:"sopInstanceUids" yaml:"sopInstanceUids"`
	IsLoaded              bool               `json:"isLoaded" yaml:"isLoaded"`
	MadeInClient          bool               `json:"madeInClient" yaml:"madeInClient"`
	Unsupported           bool               `json:"unsupported,omitempty" yaml:"unsupported,omitempty"`
	Provisional           bool               `json:"provisional,omitempty" yaml:"provisional,omitempty"`
	Messages              []messages.Message `json:"messages" yaml:"messages"`
	Settings              map[string]any     `json:"settings,omitempty" yaml:"settings,omitempty"`
	CreatedAt             time.Time          `json:"createdAt" yaml:"createdAt"`
}

// Snapshot captures the current state.
func (ds *DisplaySet) Snapshot() Snapshot {
	msgs := ds.Messages.List()
	if msgs == nil {
		msgs = []messages.Message{}
	}
	return Snapshot{
		DisplaySetInstanceUID: ds.uid,
		StudyInstanceUID:      ds.StudyInstanceUID,
		SeriesInstanceUID:     ds.SeriesInstanceUID,
		Modality:              ds.Modality,
		SeriesDescription:     ds.SeriesDescription,
		SeriesNumber:          ds.SeriesNumber,
		HandlerID:             ds.HandlerID,
		NumInstances:          ds.Len(),
		SOPInstanceUIDs:       ds.SOPInstanceUIDs(),
		IsLoaded:              ds.IsLoaded(),
		MadeInClient:          ds.MadeInClient,
		Unsupported:           ds.Unsupported,
		Provisional:           ds.Provisional(),
		Messages:              msgs,
		Settings:              ds.Settings(),
		CreatedAt:             ds.createdAt,
	}
}

// MarshalJSON encodes the set's snapshot.
func (ds *DisplaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ds.Snapshot())
}

// Snapshots captures every set in order.
func Snapshots(sets []*DisplaySet) []Snapshot {
	out := make([]Snapshot, 0, len(sets))
	for _, ds := range sets {
		out = append(out, ds.Snapshot())
	}
	return out
}

// UIDs returns the displaySetInstanceUIDs in order.
func UIDs(sets []*DisplaySet) []string {
	out := make([]string, 0, len(sets))
	for _, ds := range sets {
		out = append(out, ds.uid)
	}
	return out
}

// Containers adapts a slice of sets for instances.FilterNotIn.
func Containers(sets []*DisplaySet) []instances.Container {
	out := make([]instances.Container, 0, len(sets))
	for _, ds := range sets {
		out = append(out, ds)
	}
	return out
}
