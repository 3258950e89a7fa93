package anchors

import (
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

// DestroyAnchor releases a native space.
func (m *Manager) DestroyAnchor(h space.Handle) error {
	return m.adapter.DestroyAnchor(h)
}

func (m *Manager) GetComponentStatus(h space.Handle, t space.ComponentType) (space.ComponentStatus, error) {
	return m.adapter.GetComponentStatus(h, t)
}

// GetAnchorComponentStatus provides the component status for
// the anchor of a target.
func (m *Manager) GetAnchorComponentStatus(target TargetRef, t space.ComponentType) (space.ComponentStatus, error) {
	a, err := m.anchorFor("getComponentStatus", target)
	if err != nil {
		return space.ComponentStatus{}, err
	}
	return m.adapter.GetComponentStatus(a.Handle(), t)
}

func (m *Manager) GetSupportedComponents(h space.Handle) []space.ComponentType {
	var r []space.ComponentType
	for _, t := range []space.ComponentType{
		space.ComponentLocatable,
		space.ComponentStorable,
		space.ComponentSharable,
		space.ComponentScenePlane,
		space.ComponentSceneVolume,
		space.ComponentSemanticClassification,
		space.ComponentRoomLayout,
		space.ComponentSpaceContainer,
		space.ComponentTriangleMesh,
	} {
		if s, err := m.adapter.GetComponentStatus(h, t); err == nil && s.Enabled {
			r = append(r, t)
		}
	}
	return r
}

func (m *Manager) GetScenePlane(h space.Handle) (space.Bounds2D, error) {
	return m.adapter.GetScenePlane(h)
}

func (m *Manager) GetSceneVolume(h space.Handle) (space.Bounds3D, error) {
	return m.adapter.GetSceneVolume(h)
}

func (m *Manager) GetSemanticClassification(h space.Handle) ([]string, error) {
	return m.adapter.GetSemanticLabels(h)
}

func (m *Manager) GetRoomLayout(h space.Handle, maxWalls int) (space.RoomLayout, error) {
	return m.adapter.GetRoomLayout(h, maxWalls)
}
