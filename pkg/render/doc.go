// Package render maps canonical questions onto serialisable field
// descriptions. Rendering is pure: it never mutates the form or any session
// state, so the same question always yields the same description.
package render
