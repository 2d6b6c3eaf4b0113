// Package dynamics advances elastic-body particle state through one
// sub-step and sizes the sub-steps themselves.
//
// The integrator is a two-half-step symplectic pair built around a
// total-Lagrangian stress formulation:
//
//   - [Relaxation.FirstHalf]: half velocity kick from the current
//     stress plus contact and body forces, then a full drift of
//     positions and deformation gradients with the kicked velocity.
//   - [Relaxation.SecondHalf]: stress refresh from the new deformation
//     gradients through the body's constitutive law, then the second
//     half kick.
//
// Constraints ([FixedRegion]) and the pairwise [Damper] slot between
// the halves; both leave constrained state idempotent under repeated
// application. [Stepper] derives the next sub-step size from the
// acoustic and CFL limits of the governing bodies.
//
// # Ordering
//
// The half-kick, full-drift, stress-refresh, half-kick order is what
// makes the scheme second order and keeps its energy behavior flat;
// callers must not reorder the halves around the constraint points.
package dynamics
