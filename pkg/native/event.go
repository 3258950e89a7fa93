package native

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mandelsoft/spaceanchors/pkg/space"
)

// EventType is the tag of a raw native event record.
type EventType int32

const (
	EventNone                            EventType = 0
	EventSpatialAnchorCreateComplete     EventType = 49
	EventSpaceSetComponentStatusComplete EventType = 50
	EventSpaceQueryResults               EventType = 51
	EventSpaceQueryComplete              EventType = 52
	EventSpaceSaveComplete               EventType = 53
	EventSpaceEraseComplete              EventType = 54
	EventSceneCaptureComplete            EventType = 100
)

var eventNames = map[EventType]string{
	EventNone:                            "None",
	EventSpatialAnchorCreateComplete:     "SpatialAnchorCreateComplete",
	EventSpaceSetComponentStatusComplete: "SpaceSetComponentStatusComplete",
	EventSpaceQueryResults:               "SpaceQueryResults",
	EventSpaceQueryComplete:              "SpaceQueryComplete",
	EventSpaceSaveComplete:               "SpaceSaveComplete",
	EventSpaceEraseComplete:              "SpaceEraseComplete",
	EventSceneCaptureComplete:            "SceneCaptureComplete",
}

func (t EventType) String() string {
	if n, ok := eventNames[t]; ok {
		return n
	}
	return fmt.Sprintf("EventType(%d)", int32(t))
}

// EventDataBuffer is a raw event record as delivered by the runtime.
// The payload layout depends on the event type and is encoded
// little endian without padding.
type EventDataBuffer struct {
	EventType EventType
	Data      []byte
}

// Payload is implemented by all typed event payloads.
type Payload interface {
	EventType() EventType
}

type SpatialAnchorCreateCompleteData struct {
	RequestId space.RequestId
	Result    Result
	Space     space.Handle
	UUID      space.UUID
}

func (SpatialAnchorCreateCompleteData) EventType() EventType {
	return EventSpatialAnchorCreateComplete
}

type SpaceSetComponentStatusCompleteData struct {
	RequestId     space.RequestId
	Result        Result
	Space         space.Handle
	UUID          space.UUID
	ComponentType SpaceComponentType
	Enabled       bool
}

func (SpaceSetComponentStatusCompleteData) EventType() EventType {
	return EventSpaceSetComponentStatusComplete
}

type SpaceQueryResultsData struct {
	RequestId space.RequestId
}

func (SpaceQueryResultsData) EventType() EventType {
	return EventSpaceQueryResults
}

type SpaceQueryCompleteData struct {
	RequestId space.RequestId
	Result    Result
}

func (SpaceQueryCompleteData) EventType() EventType {
	return EventSpaceQueryComplete
}

type SpaceSaveCompleteData struct {
	RequestId space.RequestId
	Space     space.Handle
	Result    Result
	UUID      space.UUID
	Location  SpaceStorageLocation
}

func (SpaceSaveCompleteData) EventType() EventType {
	return EventSpaceSaveComplete
}

type SpaceEraseCompleteData struct {
	RequestId space.RequestId
	Result    Result
	UUID      space.UUID
	Location  SpaceStorageLocation
}

func (SpaceEraseCompleteData) EventType() EventType {
	return EventSpaceEraseComplete
}

type SceneCaptureCompleteData struct {
	RequestId space.RequestId
	Result    Result
}

func (SceneCaptureCompleteData) EventType() EventType {
	return EventSceneCaptureComplete
}

// EncodeEvent provides the raw record for a typed payload.
func EncodeEvent(p Payload) EventDataBuffer {
	var buf bytes.Buffer
	// payloads are fixed size, writing into a buffer cannot fail.
	_ = binary.Write(&buf, binary.LittleEndian, p)
	return EventDataBuffer{
		EventType: p.EventType(),
		Data:      buf.Bytes(),
	}
}

// DecodeEvent decodes the payload of a raw record.
func DecodeEvent[P Payload](buf EventDataBuffer) (P, error) {
	var p P
	if buf.EventType != p.EventType() {
		return p, fmt.Errorf("event type mismatch: expected %s, but found %s", p.EventType(), buf.EventType)
	}
	if len(buf.Data) < binary.Size(p) {
		return p, fmt.Errorf("truncated %s event: %d bytes", buf.EventType, len(buf.Data))
	}
	err := binary.Read(bytes.NewReader(buf.Data), binary.LittleEndian, &p)
	if err != nil {
		return p, fmt.Errorf("invalid %s event: %w", buf.EventType, err)
	}
	return p, nil
}
