// Package completion decides, from outside the target application, when a
// streamed generation has finished.
//
// The target UI emits no completion event, so completion is inferred by
// sampling two signals on a fixed cadence: the length of the latest visible
// answer and the visibility of the "generation in progress" affordance.
// A generation is complete once the text length has stayed unchanged, with
// the indicator absent, for StabilityThreshold consecutive polls.
//
// # States
//
//	Idle -> Submitted -> Observing -> Stable -> Done
//	                         \          \
//	                          +----------+--> TimedOut
//
// Machine holds the pure transition logic and is driven by Detector, which
// owns the polling ticker and the wall-clock ceiling.
package completion
