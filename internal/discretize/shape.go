// Package discretize turns solid shapes into particle sets: regular
// lattices for volumes and mid-surface samplings for thin-walled
// shapes.
package discretize

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is a closed solid region.
type Shape interface {
	Contains(p mgl64.Vec3) bool
	// Bounds returns the axis-aligned bounding box.
	Bounds() (lo, hi mgl64.Vec3)
	Volume() float64
}

const containEps = 1e-12

// Box is an axis-aligned block. A zero size component makes the box
// flat along that axis, which is how planar bodies are described.
type Box struct {
	Center mgl64.Vec3
	Size   mgl64.Vec3
}

func (b Box) Contains(p mgl64.Vec3) bool {
	d := p.Sub(b.Center)
	return math.Abs(d.X()) <= 0.5*b.Size.X()+containEps &&
		math.Abs(d.Y()) <= 0.5*b.Size.Y()+containEps &&
		math.Abs(d.Z()) <= 0.5*b.Size.Z()+containEps
}

func (b Box) Bounds() (mgl64.Vec3, mgl64.Vec3) {
	h := b.Size.Mul(0.5)
	return b.Center.Sub(h), b.Center.Add(h)
}

func (b Box) Volume() float64 {
	return b.Size.X() * b.Size.Y() * b.Size.Z()
}

// Ball is a solid sphere, or a disc when laid out on a flat lattice.
type Ball struct {
	Center mgl64.Vec3
	Radius float64
}

func (b Ball) Contains(p mgl64.Vec3) bool {
	return p.Sub(b.Center).Len() <= b.Radius+containEps
}

func (b Ball) Bounds() (mgl64.Vec3, mgl64.Vec3) {
	h := mgl64.Vec3{b.Radius, b.Radius, b.Radius}
	return b.Center.Sub(h), b.Center.Add(h)
}

func (b Ball) Volume() float64 {
	return 4.0 / 3.0 * math.Pi * b.Radius * b.Radius * b.Radius
}

// Tube is a hollow cylinder around the z axis through Center. Outer and
// Inner are diameters.
type Tube struct {
	Center mgl64.Vec3
	Outer  float64
	Inner  float64
	Length float64
}

func (t Tube) Contains(p mgl64.Vec3) bool {
	d := p.Sub(t.Center)
	if math.Abs(d.Z()) > 0.5*t.Length+containEps {
		return false
	}
	r := math.Hypot(d.X(), d.Y())
	return r >= 0.5*t.Inner-containEps && r <= 0.5*t.Outer+containEps
}

func (t Tube) Bounds() (mgl64.Vec3, mgl64.Vec3) {
	h := mgl64.Vec3{0.5 * t.Outer, 0.5 * t.Outer, 0.5 * t.Length}
	return t.Center.Sub(h), t.Center.Add(h)
}

func (t Tube) Volume() float64 {
	return 0.25 * math.Pi * (t.Outer*t.Outer - t.Inner*t.Inner) * t.Length
}

// Flatten clips a shape's bounds to the mid z plane so [Lattice] lays
// out a single flat layer. Containment and volume pass through.
func Flatten(s Shape) Shape { return flattened{s} }

type flattened struct{ Shape }

func (f flattened) Bounds() (mgl64.Vec3, mgl64.Vec3) {
	lo, hi := f.Shape.Bounds()
	mid := 0.5 * (lo.Z() + hi.Z())
	return mgl64.Vec3{lo.X(), lo.Y(), mid}, mgl64.Vec3{hi.X(), hi.Y(), mid}
}
