// Package model defines the canonical screening form consumed by the
// renderer, the navigator and the aggregator. A FormModel is produced once by
// the normalizer and treated as immutable afterwards; sessions work on their
// own copy (see FormModel.Clone). FieldDescription and Tree are the
// serialisable output of the widget renderer and carry every constraint a
// presentation layer needs (bounds, max lengths, option lists with their
// eligibility classification) without having to look at the raw descriptor.
package model
