// Package domain models the Weibull wind-speed distribution.
//
// # Distribution
//
// Wind-speed frequency at a site is commonly modeled by a two-parameter
// Weibull distribution:
//
//	f(w; c, k) = (k/c) * (w/c)^(k-1) * exp(-(w/c)^k),   w >= 0
//
// where c is the scale factor (m/s) and k is the shape factor (unitless).
// Typical sites have 1.5 <= k <= 3; k = 2 is the Rayleigh special case and
// k = 1 reduces to the exponential distribution.
//
// Mean wind speed has the closed form
//
//	mean = c * Γ(1 + 1/k)
//
// e.g. c = 7.0, k = 2.0 gives 7.0 * Γ(1.5) ≈ 6.20 m/s.
//
// # Preconditions
//
// Both factors must be strictly positive. Violations surface as
// [DomainError] rather than being clamped: a visibly failed recomputation is
// preferred over a silently wrong curve.
//
// Behavior at w = 0 follows the limit of the expression:
//
//	k > 1  →  0
//	k = 1  →  1/c
//	k < 1  →  +Inf (diverges; curve sampling skips it)
//
// # Sampling
//
// Curves are sampled over [SampleStart, SampleEnd) at SampleStep, i.e. 300
// points from 0 to 29.9 m/s, regardless of the display range. The display
// range only selects the renderer's visible window.
package domain
