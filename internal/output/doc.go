// Package output produces the artifacts consumed by the display layer: the
// sampled density curve, the framed plot request, and the mean summary text.
// Every call recomputes its result in full from the inputs it is given.
package output
