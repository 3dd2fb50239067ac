// Package errs provides the structured error types shared by the expedition service.
//
// The package includes:
//   - ValueIsRequiredError: a mandatory value is missing
//   - ValueIsInvalidError: a value is present but malformed
//   - ValueIsOutOfRangeError: a value falls outside its accepted bounds
//   - ObjectNotFoundError: a looked-up object does not exist
//   - VersionIsInvalidError: a persisted payload carries an unsupported version
//
// Each error type has a sentinel (ErrValueIsRequired, ...), constructors with and
// without a cause, an Error method and an Unwrap method returning the sentinel so
// callers can classify failures with errors.Is.
package errs
