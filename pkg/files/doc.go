// Package files is the orchestrating core of the file-management backend.
//
// Service combines the metadata store, the permission service, byte
// storage, upload validation, anti-hotlink tokens and the task queue into
// the operations callers consume: content-deduplicated upload (single and
// batch), permission-checked download, soft delete and restore, listing,
// search, per-owner stats and download-token issuance.
//
// Uploads are content-addressed: byte-identical content resolves to the
// one existing live record, with concurrent-upload races settled by the
// store's uniqueness constraint and a re-fetch. Image uploads feed an
// asynchronous pipeline that compresses oversized originals and renders
// preview thumbnails without ever blocking the upload call or mutating the
// original bytes.
//
// Two maintenance sweeps run outside the request path (RegisterJobs):
// deactivation of expired permission grants, and the retention reaper that
// physically removes files soft-deleted past the retention period.
package files
