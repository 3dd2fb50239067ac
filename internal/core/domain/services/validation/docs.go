// Package validation decides whether a stage input may complete the current stage of a
// draft. It never mutates the draft; failures come back as a field-keyed error set.
package validation
