// Package collision implements analytic convex collision shapes for a
// rigid-body narrow phase. The chamfer cylinder is a disk swept by a sphere:
// a cylinder about the X axis whose rim is rounded by a circular arc.
//
// Every chamfer cylinder shares one discretized half-edge topology, built on
// first use and reference counted through a TopologyCache. Instances scale
// the shared unit template by their own radius and half-height, so the
// queries (support mapping, ray cast, plane intersection and debug
// tessellation) read only immutable data and may run concurrently.
package collision
