package simulator

import (
	"fmt"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"sigs.k8s.io/yaml"

	"github.com/mandelsoft/spaceanchors/pkg/native"
)

// Fixture describes the scene reported by the simulated runtime
// after a scene capture.
type Fixture struct {
	Floor   Surface   `json:"floor"`
	Ceiling Surface   `json:"ceiling"`
	Walls   []Surface `json:"walls"`
	Objects []Surface `json:"objects,omitempty"`
}

// Surface is a scene element. Planes are described by a
// rectangle, volumes by a box.
type Surface struct {
	Labels   []string `json:"labels"`
	Position Vector   `json:"position"`
	Plane    *Rect    `json:"plane,omitempty"`
	Volume   *Box     `json:"volume,omitempty"`
}

// Vector is given in native tracking space (meters).
type Vector struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

type Rect struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

func (r *Rect) Native() native.Rectf {
	return native.Rectf{
		Pos:  native.Vector2f{X: r.X, Y: r.Y},
		Size: native.Sizef{W: r.Width, H: r.Height},
	}
}

type Box struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Z      float32 `json:"z"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	Depth  float32 `json:"depth"`
}

func (b *Box) Native() native.Boundsf {
	return native.Boundsf{
		Pos:  native.Vector3f{X: b.X, Y: b.Y, Z: b.Z},
		Size: native.Size3f{W: b.Width, H: b.Height, D: b.Depth},
	}
}

func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("invalid scene fixture: %w", err)
	}
	return &f, nil
}

func ReadFixture(fs vfs.FileSystem, path string) (*Fixture, error) {
	data, err := vfs.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return ParseFixture(data)
}

// DefaultFixture is a 4m x 3m room with a table.
func DefaultFixture() *Fixture {
	wall := func(x, z float32, width float32) Surface {
		return Surface{
			Labels:   []string{"WALL_FACE"},
			Position: Vector{X: x, Y: 1.25, Z: z},
			Plane:    &Rect{X: -width / 2, Y: -1.25, Width: width, Height: 2.5},
		}
	}
	return &Fixture{
		Floor: Surface{
			Labels: []string{"FLOOR"},
			Plane:  &Rect{X: -2, Y: -1.5, Width: 4, Height: 3},
		},
		Ceiling: Surface{
			Labels:   []string{"CEILING"},
			Position: Vector{Y: 2.5},
			Plane:    &Rect{X: -2, Y: -1.5, Width: 4, Height: 3},
		},
		Walls: []Surface{
			wall(0, -1.5, 4),
			wall(2, 0, 3),
			wall(0, 1.5, 4),
			wall(-2, 0, 3),
		},
		Objects: []Surface{
			{
				Labels:   []string{"TABLE"},
				Position: Vector{X: 0.5, Y: 0.75, Z: -0.5},
				Plane:    &Rect{X: -0.6, Y: -0.4, Width: 1.2, Height: 0.8},
				Volume:   &Box{X: -0.6, Y: -0.75, Z: -0.4, Width: 1.2, Height: 0.75, Depth: 0.8},
			},
		},
	}
}
