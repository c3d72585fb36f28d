// Package normalize turns loosely shaped questionnaire descriptors into the
// canonical model.FormModel.
//
// Descriptors arrive from form builders, Notion exports and hand written
// JSON/YAML, so the same attribute shows up under different key names. Every
// attribute is read through an ordered list of candidate keys (see keys.go);
// nothing outside this package looks at raw descriptor keys.
//
// Section detection follows the declaration order of the input:
//
//   - a top-level list is one section titled "Questions"
//   - a top-level map contributes one section per list-valued key, except
//     the reserved "questions", "config" and "metadata" keys
//   - a "sections" key may hold a map of name to question list, or a list of
//     section objects with their own "questions"
//   - with no candidate the first list-valued key becomes the only section
//
// One section renders as a single page, more as a wizard; see model.Mode.
package normalize
