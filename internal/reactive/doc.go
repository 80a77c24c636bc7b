// Package reactive connects user inputs to derived state.
//
// A [Store] holds the scale, shape and display range of one session plus the
// cached mean wind speed. Every successful Set call sends exactly one change
// notification to the session's [Scheduler], which runs the computations
// declared on that parameter in a static [Table]:
//
//	scale          → mean_on_scale
//	shape          → mean_on_shape
//	display_range  → (nothing)
//
// Notifications are never deduplicated or coalesced: setting the same value
// twice runs the mean computation twice, each time reading current state.
//
// The mean is pushed eagerly. The curve and summary outputs are not in the
// table; they are pulled and recomputed in full on every request.
package reactive
