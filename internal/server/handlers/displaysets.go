package handlers

import (
	"io"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-yaml"

	"github.com/OHIF/Viewers-sub030/internal/matcher"
	"github.com/OHIF/Viewers-sub030/internal/server/events"
	"github.com/OHIF/Viewers-sub030/internal/server/response"
	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/errors"
	dshandlers "github.com/OHIF/Viewers-sub030/pkg/handlers"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
	"github.com/OHIF/Viewers-sub030/pkg/logging"
	"github.com/OHIF/Viewers-sub030/pkg/reconciler"
)

// unclaimedView notes a partition no builder claimed.
type unclaimedView struct {
	SeriesInstanceUID string `json:"seriesInstanceUid"`
	SOPClassUID       string `json:"sopClassUid"`
}

// groupView is the outcome of one ingested group.
type groupView struct {
	SeriesInstanceUID      string          `json:"seriesInstanceUid"`
	DisplaySetInstanceUIDs []string        `json:"displaySetInstanceUids"`
	Created                int             `json:"created"`
	Reused                 int             `json:"reused"`
	Unclaimed              []unclaimedView `json:"unclaimed,omitempty"`
	Error                  string          `json:"error,omitempty"`
}

// ingestView is the body of a successful POST /instances.
type ingestView struct {
	DisplaySets []displayset.Snapshot `json:"displaySets"`
	Groups      []groupView           `json:"groups"`
	Created     int                   `json:"created"`
	Reused      int                   `json:"reused"`
	Invalidated []string              `json:"invalidated,omitempty"`
}

func newIngestView(res *reconciler.Result) ingestView {
	view := ingestView{
		DisplaySets: displayset.Snapshots(res.DisplaySets),
		Groups:      make([]groupView, len(res.Groups)),
		Created:     res.Created,
		Reused:      res.Reused,
		Invalidated: res.Invalidated,
	}
	for i, g := range res.Groups {
		gv := groupView{
			SeriesInstanceUID:      g.SeriesInstanceUID,
			DisplaySetInstanceUIDs: displayset.UIDs(g.DisplaySets),
			Created:                g.Created,
			Reused:                 g.Reused,
		}
		if gv.DisplaySetInstanceUIDs == nil {
			gv.DisplaySetInstanceUIDs = []string{}
		}
		for _, u := range g.Unclaimed {
			gv.Unclaimed = append(gv.Unclaimed, unclaimedView{SeriesInstanceUID: u.SeriesInstanceUID, SOPClassUID: u.SOPClassUID})
		}
		if g.Err != nil {
			gv.Error = g.Err.Error()
		}
		view.Groups[i] = gv
	}
	return view
}

// HandleIngest returns the handler of POST /api/v1/instances.
// The body is a JSON or YAML instance list, or a list of lists with
// ?batch=true. ?madeInClient=true marks produced sets as local.
// ?settings= takes a JSON or YAML object of viewport hints merged onto
// the produced sets.
func (h *Handlers) HandleIngest(limit int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch, err := boolQuery(r, "batch")
		if err != nil {
			response.ErrorFromType(w, err)
			return
		}
		madeInClient, err := boolQuery(r, "madeInClient")
		if err != nil {
			response.ErrorFromType(w, err)
			return
		}
		settings, err := settingsQuery(r)
		if err != nil {
			response.ErrorFromType(w, err)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.TooLarge(w, limit)
				return
			}
			response.BadRequest(w, "Failed to read request body", err.Error())
			return
		}

		groups, err := instances.Decode(body, batch)
		if err != nil {
			response.ErrorFromType(w, err)
			return
		}

		ctx := logging.WithOperation(r.Context(), "ingest")
		opts := []reconciler.MakeOption{reconciler.WithMadeInClient(madeInClient)}
		if len(settings) > 0 {
			opts = append(opts, reconciler.WithSettings(settings))
		}
		var res *reconciler.Result
		if batch {
			res, err = h.svc.MakeDisplaySetsBatch(ctx, groups, opts...)
		} else {
			res, err = h.svc.MakeDisplaySets(ctx, groups[0], opts...)
		}
		if err != nil {
			response.ErrorFromType(w, err)
			return
		}

		logging.FromContext(ctx).Debug().
			Int("groups", len(res.Groups)).
			Int("created", res.Created).
			Int("reused", res.Reused).
			Ints("failed_groups", res.FailedGroups()).
			Msg("Instances ingested")
		response.OK(w, newIngestView(res))
	}
}

// HandleListDisplaySets handles GET /api/v1/displaysets.
// ?series= narrows to one series; ?active=false lists the whole cache;
// ?description= keeps sets whose SeriesDescription matches a glob or regex.
func (h *Handlers) HandleListDisplaySets(w http.ResponseWriter, r *http.Request) {
	var describe func(*displayset.DisplaySet) bool
	if pattern := r.URL.Query().Get("description"); pattern != "" {
		pred, err := matcher.Description(pattern)
		if err != nil {
			response.ErrorFromType(w, errors.NewValidationError("description", pattern, err.Error()))
			return
		}
		describe = pred
	}

	activeOnly := true
	if r.URL.Query().Has("active") {
		v, err := boolQuery(r, "active")
		if err != nil {
			response.ErrorFromType(w, err)
			return
		}
		activeOnly = v
	}

	var sets []*displayset.DisplaySet
	if series := r.URL.Query().Get("series"); series != "" {
		sets = h.svc.DisplaySetsForSeries(series)
		if activeOnly {
			active := make(map[string]struct{})
			for _, uid := range displayset.UIDs(h.svc.ActiveDisplaySets()) {
				active[uid] = struct{}{}
			}
			kept := sets[:0:0]
			for _, ds := range sets {
				if _, ok := active[ds.UID()]; ok {
					kept = append(kept, ds)
				}
			}
			sets = kept
		}
	} else if activeOnly && describe != nil {
		sets = h.svc.DisplaySetsBy(describe)
		describe = nil
	} else if activeOnly {
		sets = h.svc.ActiveDisplaySets()
	} else {
		sets = h.svc.AllDisplaySets()
	}
	if describe != nil {
		sets = slices.DeleteFunc(sets, func(ds *displayset.DisplaySet) bool { return !describe(ds) })
	}

	response.OK(w, map[string]any{
		"displaySets": displayset.Snapshots(sets),
		"count":       len(sets),
	})
}

// HandleGetDisplaySet handles GET /api/v1/displaysets/{uid}.
func (h *Handlers) HandleGetDisplaySet(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	ds, ok := h.svc.DisplaySetByUID(uid)
	if !ok {
		response.ErrorFromType(w, errors.NewNotFoundError("display set", uid))
		return
	}
	response.OK(w, ds.Snapshot())
}

// HandleDeleteDisplaySet handles DELETE /api/v1/displaysets/{uid}.
func (h *Handlers) HandleDeleteDisplaySet(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if !h.svc.DeleteDisplaySet(uid) {
		response.ErrorFromType(w, errors.NewNotFoundError("display set", uid))
		return
	}
	response.OK(w, map[string]any{"deleted": uid})
}

// HandleInvalidate handles POST /api/v1/displaysets/{uid}/invalidate.
// ?invalidateData=false keeps cached pixel data (default true).
func (h *Handlers) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	invalidateData := true
	if r.URL.Query().Has("invalidateData") {
		v, err := boolQuery(r, "invalidateData")
		if err != nil {
			response.ErrorFromType(w, err)
			return
		}
		invalidateData = v
	}
	if err := h.svc.SetMetadataInvalidated(uid, invalidateData); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, map[string]any{
		"displaySetInstanceUID": uid,
		"invalidateData":        invalidateData,
	})
}

// HandleReset handles POST /api/v1/session/reset. The engine publishes
// nothing on mode exit, so the server announces it to streamed clients.
func (h *Handlers) HandleReset(w http.ResponseWriter, _ *http.Request) {
	cleared := h.svc.Len()
	h.svc.OnModeExit()
	h.broker.Publish(events.SessionReset, map[string]any{"cleared": cleared})
	response.OK(w, map[string]any{"cleared": cleared})
}

// handlerView is the serialized form of a registered builder.
type handlerView struct {
	ID           string   `json:"id"`
	SOPClassUIDs []string `json:"sopClassUids"`
	Fallback     bool     `json:"fallback,omitempty"`
}

// HandleListHandlers handles GET /api/v1/handlers.
func (h *Handlers) HandleListHandlers(w http.ResponseWriter, _ *http.Request) {
	hs := h.svc.Handlers()
	views := make([]handlerView, 0, len(hs)+1)
	for _, hd := range hs {
		views = append(views, viewOf(hd, false))
	}
	if fb, ok := h.svc.Fallback(); ok {
		views = append(views, viewOf(fb, true))
	}
	response.OK(w, views)
}

func viewOf(h dshandlers.Handler, fallback bool) handlerView {
	classes := h.SOPClassUIDs()
	if classes == nil {
		classes = []string{}
	}
	return handlerView{ID: h.ID(), SOPClassUIDs: classes, Fallback: fallback}
}

func boolQuery(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.NewValidationError(key, raw, "must be a boolean")
	}
	return v, nil
}

func settingsQuery(r *http.Request) (map[string]any, error) {
	raw := r.URL.Query().Get("settings")
	if raw == "" {
		return nil, nil
	}
	var settings map[string]any
	if err := yaml.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, errors.NewValidationError("settings", raw, "must be a JSON or YAML object")
	}
	return settings, nil
}
