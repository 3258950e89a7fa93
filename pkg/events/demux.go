package events

import (
	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

// QueryResultRetriever provides access to the result set of a query.
type QueryResultRetriever interface {
	RetrieveSpaceQueryResults(id space.RequestId, buf []native.SpaceQueryResult) (int, native.Result)
}

// Demultiplexer decodes raw native event records into typed events
// and publishes them on a bus in arrival order.
type Demultiplexer struct {
	results   QueryResultRetriever
	publisher Publisher
}

func NewDemultiplexer(results QueryResultRetriever, p Publisher) *Demultiplexer {
	return &Demultiplexer{
		results:   results,
		publisher: p,
	}
}

// Dispatch handles a single raw event. It returns false for events
// not recognized by the demultiplexer.
func (d *Demultiplexer) Dispatch(buf native.EventDataBuffer) bool {
	switch buf.EventType {
	case native.EventNone:
		return true

	case native.EventSpatialAnchorCreateComplete:
		return dispatch(d, buf, func(p native.SpatialAnchorCreateCompleteData) {
			d.publisher.Publish(AnchorCreateComplete{
				RequestId: p.RequestId,
				Result:    p.Result,
				Handle:    p.Space,
				UUID:      p.UUID,
			})
		})

	case native.EventSpaceSetComponentStatusComplete:
		return dispatch(d, buf, func(p native.SpaceSetComponentStatusCompleteData) {
			d.publisher.Publish(SetComponentStatusComplete{
				RequestId:     p.RequestId,
				Result:        p.Result,
				Handle:        p.Space,
				UUID:          p.UUID,
				ComponentType: native.FromNativeComponentType(p.ComponentType),
				Enabled:       p.Enabled,
			})
		})

	case native.EventSpaceQueryResults:
		return dispatch(d, buf, func(p native.SpaceQueryResultsData) {
			d.queryResults(p.RequestId)
		})

	case native.EventSpaceQueryComplete:
		return dispatch(d, buf, func(p native.SpaceQueryCompleteData) {
			d.publisher.Publish(QueryComplete{
				RequestId: p.RequestId,
				Result:    p.Result,
			})
		})

	case native.EventSpaceSaveComplete:
		return dispatch(d, buf, func(p native.SpaceSaveCompleteData) {
			d.publisher.Publish(SaveComplete{
				RequestId: p.RequestId,
				Handle:    p.Space,
				Result:    p.Result,
				UUID:      p.UUID,
				Location:  native.FromNativeStorageLocation(p.Location),
			})
		})

	case native.EventSpaceEraseComplete:
		return dispatch(d, buf, func(p native.SpaceEraseCompleteData) {
			d.publisher.Publish(EraseComplete{
				RequestId: p.RequestId,
				Result:    p.Result,
				UUID:      p.UUID,
				Location:  native.FromNativeStorageLocation(p.Location),
			})
		})

	case native.EventSceneCaptureComplete:
		return dispatch(d, buf, func(p native.SceneCaptureCompleteData) {
			d.publisher.Publish(SceneCaptureComplete{
				RequestId: p.RequestId,
				Result:    p.Result,
			})
		})
	}
	log.Trace("ignoring unhandled event type {{type}}", "type", buf.EventType)
	return false
}

func dispatch[P native.Payload](d *Demultiplexer, buf native.EventDataBuffer, f func(p P)) bool {
	p, err := native.DecodeEvent[P](buf)
	if err != nil {
		log.LogError(err, "dropping malformed event")
		return false
	}
	f(p)
	return true
}

// queryResults fetches the available results of a query in two steps:
// the first call reports the result count, the second one fills
// a buffer of this size.
func (d *Demultiplexer) queryResults(id space.RequestId) {
	var results []native.SpaceQueryResult

	n, r := d.results.RetrieveSpaceQueryResults(id, nil)
	if r.Success() && n > 0 {
		results = make([]native.SpaceQueryResult, n)
		n, r = d.results.RetrieveSpaceQueryResults(id, results)
		if n < len(results) {
			results = results[:n]
		}
	}
	if !r.Success() {
		log.Warn("cannot retrieve results for query {{request}}: {{result}}", "request", id, "result", r)
		results = nil
	}

	d.publisher.Publish(QueryResultsBegin{RequestId: id})
	for _, e := range results {
		d.publisher.Publish(QueryResultElement{
			RequestId: id,
			Handle:    e.Space,
			UUID:      e.UUID,
		})
	}
}
