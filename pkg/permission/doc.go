// Package permission implements time-bounded, per-user access grants on
// files.
//
// A Grant ties one user to one capability (read, write, delete, manage) on
// one file, optionally expiring. The file owner implicitly holds every
// capability; Manage holders may grant and revoke for others.
//
// Validity is always computed at read time: a grant past its expiry fails
// checks immediately, even before the periodic sweep has flipped its active
// flag. The sweep (Service.SweepExpired) is a cleanup pass, never a
// correctness dependency.
package permission
