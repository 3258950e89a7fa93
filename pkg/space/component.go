package space

import (
	"fmt"
	"strings"
)

// ComponentType describes a capability a space may carry.
type ComponentType int

const (
	ComponentUndefined ComponentType = iota
	ComponentLocatable
	ComponentStorable
	ComponentSharable
	ComponentScenePlane
	ComponentSceneVolume
	ComponentSemanticClassification
	ComponentRoomLayout
	ComponentSpaceContainer
	ComponentTriangleMesh
)

var componentNames = map[ComponentType]string{
	ComponentUndefined:              "Undefined",
	ComponentLocatable:              "Locatable",
	ComponentStorable:               "Storable",
	ComponentSharable:               "Sharable",
	ComponentScenePlane:             "ScenePlane",
	ComponentSceneVolume:            "SceneVolume",
	ComponentSemanticClassification: "SemanticClassification",
	ComponentRoomLayout:             "RoomLayout",
	ComponentSpaceContainer:         "SpaceContainer",
	ComponentTriangleMesh:           "TriangleMesh",
}

func (c ComponentType) String() string {
	if n, ok := componentNames[c]; ok {
		return n
	}
	return fmt.Sprintf("ComponentType(%d)", int(c))
}

func ParseComponentType(s string) (ComponentType, error) {
	for t, n := range componentNames {
		if strings.EqualFold(n, s) {
			return t, nil
		}
	}
	return ComponentUndefined, fmt.Errorf("unknown component type %q", s)
}

func (c ComponentType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ComponentType) UnmarshalText(data []byte) error {
	t, err := ParseComponentType(string(data))
	if err != nil {
		return err
	}
	*c = t
	return nil
}

// ComponentStatus is the state of a component on a space.
type ComponentStatus struct {
	Enabled       bool `json:"enabled"`
	ChangePending bool `json:"changePending"`
}

// StorageLocation describes where a space is persisted.
type StorageLocation int

const (
	StorageInvalid StorageLocation = iota
	StorageLocal
)

func (l StorageLocation) String() string {
	switch l {
	case StorageLocal:
		return "Local"
	case StorageInvalid:
		return "Invalid"
	}
	return fmt.Sprintf("StorageLocation(%d)", int(l))
}

func ParseStorageLocation(s string) (StorageLocation, error) {
	switch strings.ToLower(s) {
	case "local":
		return StorageLocal, nil
	case "invalid", "":
		return StorageInvalid, nil
	}
	return StorageInvalid, fmt.Errorf("unknown storage location %q", s)
}

func (l StorageLocation) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *StorageLocation) UnmarshalText(data []byte) error {
	n, err := ParseStorageLocation(string(data))
	if err != nil {
		return err
	}
	*l = n
	return nil
}

// PersistenceMode describes how long a saved space is kept.
type PersistenceMode int

const (
	PersistenceInvalid PersistenceMode = iota
	PersistenceIndefinite
)

func (m PersistenceMode) String() string {
	switch m {
	case PersistenceIndefinite:
		return "Indefinite"
	case PersistenceInvalid:
		return "Invalid"
	}
	return fmt.Sprintf("PersistenceMode(%d)", int(m))
}
