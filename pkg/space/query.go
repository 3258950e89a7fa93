package space

import (
	"fmt"
	"time"
)

// QueryFilterType selects which filter list of a QueryInfo is used.
type QueryFilterType int

const (
	FilterNone QueryFilterType = iota
	FilterByIds
	FilterByComponentType
)

func (f QueryFilterType) String() string {
	switch f {
	case FilterNone:
		return "None"
	case FilterByIds:
		return "ByIds"
	case FilterByComponentType:
		return "ByComponentType"
	}
	return fmt.Sprintf("QueryFilterType(%d)", int(f))
}

// QueryInfo describes a space query.
type QueryInfo struct {
	MaxQuerySpaces  int             `json:"maxQuerySpaces"`
	Timeout         time.Duration   `json:"timeout,omitempty"`
	Location        StorageLocation `json:"location"`
	FilterType      QueryFilterType `json:"filterType"`
	IDFilter        []UUID          `json:"idFilter,omitempty"`
	ComponentFilter []ComponentType `json:"componentFilter,omitempty"`
}

// QueryByIds provides a query for a set of stored spaces.
func QueryByIds(location StorageLocation, max int, ids ...UUID) QueryInfo {
	return QueryInfo{
		MaxQuerySpaces: max,
		Location:       location,
		FilterType:     FilterByIds,
		IDFilter:       ids,
	}
}

// QueryByComponents provides a query for spaces carrying
// one of the given component types.
func QueryByComponents(location StorageLocation, max int, types ...ComponentType) QueryInfo {
	return QueryInfo{
		MaxQuerySpaces:  max,
		Location:        location,
		FilterType:      FilterByComponentType,
		ComponentFilter: types,
	}
}

// QueryResult is a single space found by a query.
type QueryResult struct {
	Handle   Handle          `json:"handle"`
	UUID     UUID            `json:"uuid"`
	Location StorageLocation `json:"location"`
}

func (r QueryResult) String() string {
	return fmt.Sprintf("%s[%s]@%s", r.UUID, r.Handle, r.Location)
}
