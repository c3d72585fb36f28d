// Package descriptor holds the raw, loosely shaped questionnaire descriptors
// the engine consumes. Documents arrive from files, fs.FS entries, or URLs and
// are parsed into an ordered Node tree: mapping entries keep the order in
// which they were declared so the normalizer can honour section ordering, a
// guarantee plain Go maps cannot give. JSON input is walked with gjson and
// YAML input with yaml.v3 nodes; both produce the same tree.
package descriptor
