// Package validate runs the pre-write checks on uploaded files: content
// presence, filename legality, extension and MIME allow-lists, magic-number
// verification against the claimed type, size ceiling, and per-owner rate
// limiting.
//
// A failed check rejects the upload before any storage write, so no partial
// state is ever created. Filenames are rejected rather than rewritten; the
// only sanitizing helper, DisplayName, is for presentation.
package validate
