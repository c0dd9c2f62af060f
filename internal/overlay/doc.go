// Package overlay models the per-job overlay directives and compiles them
// into an ffmpeg filter graph.
//
// Text overlays become drawtext stages chained strictly sequentially, so
// later captions draw on top of earlier ones. Image and video overlays each
// claim the next extra input index and become a scale stage plus an overlay
// stage stacked on top of the caption chain. An overlay list that yields no
// usable stage compiles to a stream-copy graph, letting the render pass
// through without re-encoding.
package overlay
