package reconciler

import "github.com/OHIF/Viewers-sub030/pkg/displayset"

// AddedPayload is the data of a DISPLAY_SETS_ADDED event: the sets produced
// or reused per input group, and the call's options.
type AddedPayload struct {
	Groups  [][]*displayset.DisplaySet `json:"displaySetsAdded"`
	Options IngestOptions              `json:"options"`
}

// ChangedPayload is the data of a DISPLAY_SETS_CHANGED event.
type ChangedPayload struct {
	Active []*displayset.DisplaySet `json:"activeDisplaySets"`
}

// RemovedPayload is the data of a DISPLAY_SETS_REMOVED event.
type RemovedPayload struct {
	UIDs []string `json:"displaySetInstanceUIDs"`
}

// InvalidatedPayload is the data of a SERIES_METADATA_INVALIDATED event.
type InvalidatedPayload struct {
	DisplaySetInstanceUID string `json:"displaySetInstanceUID"`
	InvalidateData        bool   `json:"invalidateData"`
}
