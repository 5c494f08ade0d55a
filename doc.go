// Package implicit evaluates triply periodic implicit surfaces such as the
// gyroid and samples them on regular grids for iso-surface extraction.
//
// Meshes are extracted from a sampled Volume by the render package and
// scaled to physical dimensions by the extract package.
package implicit
