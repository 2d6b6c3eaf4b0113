// Package engine drives contact simulations from start to finish.
//
// An [Engine] owns the bodies of one scene and the operators acting on
// them:
//
//   - [github.com/san-kum/sphsim/internal/dynamics.Relaxation] for each
//     elastic body
//   - [github.com/san-kum/sphsim/internal/contact.Pair] for each
//     registered body pair
//   - [github.com/san-kum/sphsim/internal/rigid.Link] for each coupled
//     region
//   - holders and dampers between the integrator halves
//
// and advances them in a fixed sub-step order. The sub-step size comes
// from the acoustic limit of the elastic bodies each iteration.
//
// # Example
//
//	scene := config.GetPreset("collision")
//	eng, _ := engine.FromScene(scene)
//	eng.AddMetric(metrics.NewKineticEnergy())
//	result, err := eng.Run(recorder)
//
// # Termination
//
// Run returns when simulated time reaches the configured end or when a
// sub-step fails; there is no other exit. Failures carry step and time
// context as a [*StepError].
//
// # Thread Safety
//
// An Engine is not safe for concurrent use. Render surfaces that step
// an engine from a UI loop must serialize Advance and Frame calls.
package engine
