package events

import (
	"slices"

	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

// Kind identifies the type of a typed event.
type Kind string

const (
	// AllKinds can be used to subscribe for events of any kind.
	AllKinds Kind = ""

	KindAnchorCreateComplete       Kind = "AnchorCreateComplete"
	KindSetComponentStatusComplete Kind = "SetComponentStatusComplete"
	KindQueryResultsBegin          Kind = "QueryResultsBegin"
	KindQueryResultElement         Kind = "QueryResultElement"
	KindQueryComplete              Kind = "QueryComplete"
	KindSaveComplete               Kind = "SaveComplete"
	KindEraseComplete              Kind = "EraseComplete"
	KindSceneCaptureComplete       Kind = "SceneCaptureComplete"
)

var Kinds = []Kind{
	KindAnchorCreateComplete,
	KindSetComponentStatusComplete,
	KindQueryResultsBegin,
	KindQueryResultElement,
	KindQueryComplete,
	KindSaveComplete,
	KindEraseComplete,
	KindSceneCaptureComplete,
}

// IsKind checks for a known event kind.
func IsKind(k Kind) bool {
	return slices.Contains(Kinds, k)
}

// Event is a typed completion event decoded from a native event record.
type Event interface {
	Kind() Kind
	Request() space.RequestId
}

type AnchorCreateComplete struct {
	RequestId space.RequestId `json:"requestId"`
	Result    native.Result   `json:"result"`
	Handle    space.Handle    `json:"handle"`
	UUID      space.UUID      `json:"uuid"`
}

func (AnchorCreateComplete) Kind() Kind { return KindAnchorCreateComplete }
func (e AnchorCreateComplete) Request() space.RequestId { return e.RequestId }

type SetComponentStatusComplete struct {
	RequestId     space.RequestId     `json:"requestId"`
	Result        native.Result       `json:"result"`
	Handle        space.Handle        `json:"handle"`
	UUID          space.UUID          `json:"uuid"`
	ComponentType space.ComponentType `json:"componentType"`
	Enabled       bool                `json:"enabled"`
}

func (SetComponentStatusComplete) Kind() Kind { return KindSetComponentStatusComplete }
func (e SetComponentStatusComplete) Request() space.RequestId { return e.RequestId }

// QueryResultsBegin marks the start of a batch of query results.
type QueryResultsBegin struct {
	RequestId space.RequestId `json:"requestId"`
}

func (QueryResultsBegin) Kind() Kind { return KindQueryResultsBegin }
func (e QueryResultsBegin) Request() space.RequestId { return e.RequestId }

type QueryResultElement struct {
	RequestId space.RequestId `json:"requestId"`
	Handle    space.Handle    `json:"handle"`
	UUID      space.UUID      `json:"uuid"`
}

func (QueryResultElement) Kind() Kind { return KindQueryResultElement }
func (e QueryResultElement) Request() space.RequestId { return e.RequestId }

type QueryComplete struct {
	RequestId space.RequestId `json:"requestId"`
	Result    native.Result   `json:"result"`
}

func (QueryComplete) Kind() Kind { return KindQueryComplete }
func (e QueryComplete) Request() space.RequestId { return e.RequestId }

type SaveComplete struct {
	RequestId space.RequestId       `json:"requestId"`
	Handle    space.Handle          `json:"handle"`
	Result    native.Result         `json:"result"`
	UUID      space.UUID            `json:"uuid"`
	Location  space.StorageLocation `json:"location"`
}

func (SaveComplete) Kind() Kind { return KindSaveComplete }
func (e SaveComplete) Request() space.RequestId { return e.RequestId }

type EraseComplete struct {
	RequestId space.RequestId       `json:"requestId"`
	Result    native.Result         `json:"result"`
	UUID      space.UUID            `json:"uuid"`
	Location  space.StorageLocation `json:"location"`
}

func (EraseComplete) Kind() Kind { return KindEraseComplete }
func (e EraseComplete) Request() space.RequestId { return e.RequestId }

type SceneCaptureComplete struct {
	RequestId space.RequestId `json:"requestId"`
	Result    native.Result   `json:"result"`
}

func (SceneCaptureComplete) Kind() Kind { return KindSceneCaptureComplete }
func (e SceneCaptureComplete) Request() space.RequestId { return e.RequestId }
