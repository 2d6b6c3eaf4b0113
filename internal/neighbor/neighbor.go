// Package neighbor builds and refreshes the per-particle interaction
// lists the force stages consume.
//
// Two flavors exist. An inner relation pairs particles of one body in
// its reference configuration; solid dynamics keeps those lists for the
// whole run. A contact relation pairs particles of two distinct bodies
// in their current configurations and is rebuilt every sub-step.
package neighbor

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/sphsim/internal/body"
	"github.com/san-kum/sphsim/internal/compute"
	"github.com/san-kum/sphsim/internal/grid"
)

// Pair is one neighbor record. E points from the neighbor to the source
// particle, so DW*E is the kernel gradient seen by the source.
type Pair struct {
	J  int     // neighbor particle id in the target body
	R  float64 // pair distance
	W  float64 // kernel weight at R
	DW float64 // radial kernel derivative at R, negative inside support
	E  mgl64.Vec3
}

// Relation holds the neighbor lists from every source particle into a
// target body. Lists are exhaustive within the kernel radius after
// Update and never patched incrementally.
type Relation struct {
	Source *body.Body
	Target *body.Body

	inner bool
	Lists [][]Pair
}

// NewInner builds the reference-configuration relation of a single
// body. The returned lists are complete; calling Update again without
// moving reference positions reproduces them exactly.
func NewInner(b *body.Body) *Relation {
	r := &Relation{Source: b, Target: b, inner: true, Lists: make([][]Pair, b.Len())}
	r.Update()
	return r
}

// NewContact builds an empty relation from src onto dst particles. The
// caller updates it each sub-step after the target index is rebuilt.
func NewContact(src, dst *body.Body) *Relation {
	return &Relation{Source: src, Target: dst, Lists: make([][]Pair, src.Len())}
}

// Update rebuilds every list from the governing positions: reference
// for inner relations, current for contact relations. Each source
// particle's list is written by exactly one worker.
func (r *Relation) Update() {
	srcPos, dstPos := r.Source.Pos, r.Target.Pos
	index := r.Target.Index
	if r.inner {
		srcPos, dstPos = r.Source.Pos0, r.Target.Pos0
		index = referenceIndex(r.Target)
	}
	kern := r.Source.Kern
	radius := kern.Radius()

	compute.ForEach(len(srcPos), func(i int) {
		list := r.Lists[i][:0]
		pi := srcPos[i]
		index.Query(pi, radius, func(j int) {
			if r.inner && i == j {
				return
			}
			d := pi.Sub(dstPos[j])
			dist := d.Len()
			if dist >= radius || dist < 1e-12 {
				return
			}
			list = append(list, Pair{
				J:  j,
				R:  dist,
				W:  kern.Weight(dist),
				DW: kern.Grad(dist),
				E:  d.Mul(1 / dist),
			})
		})
		r.Lists[i] = list
	})
}

// referenceIndex bins the reference positions; built on demand because
// inner relations update rarely.
func referenceIndex(b *body.Body) *grid.Index {
	g := grid.New(b.Kern.Radius())
	g.Rebuild(b.Pos0)
	return g
}
