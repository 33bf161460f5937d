// Package filemeta defines the file metadata record and its durable stores.
//
// A Record carries everything the service knows about one stored file:
// identity, stored location, content hash, ownership, access statistics and
// the soft-delete state. Two invariants hold across all Store
// implementations:
//
//   - among non-deleted records the content hash is unique, so uploading
//     byte-identical content resolves to the existing live record, and
//   - the stored name is unique unconditionally.
//
// Both are enforced at the storage level, so concurrent uploads of identical
// content racing on the check-then-insert path surface as ErrDuplicateHash
// rather than producing two records.
//
// Three implementations are provided: MemoryStore for tests and
// single-process use, PostgresStore over pgx with embedded goose migrations,
// and MongoStore with equivalent partial unique indexes.
package filemeta
