// Package kernel provides the smoothing functions used to weight
// particle interactions.
//
// A [Kernel] evaluates the weight W(r) and its radial derivative for a
// pair distance r, and reports the support radius beyond which both
// vanish. Implementations are normalized for the spatial dimension they
// are built for, so summing W over a filled lattice approximates the
// inverse particle volume.
package kernel
