// Package validation checks captured answers for one step before the
// navigator may advance. Every failing field is reported together so a
// presentation layer can show all messages at once. The engine only reads the
// values it is given; it never holds on to session state.
//
// Lint applies the same vocabulary to descriptors themselves and reports
// problems a form author should fix before publishing.
package validation
