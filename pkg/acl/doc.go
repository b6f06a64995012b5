// Package acl implements the access-control core of the directory service:
// a precompiled, per-principal authorization engine built from three
// tightly coupled pieces.
//
// Bitmap is a 128-bit set of permission identifiers with O(1) algebraic
// operations and a stable two-halves on-disk layout. AttributeFilter is a
// case-insensitive whitelist/denylist gate over attribute names. Compile
// folds a flat sequence of AclRow values (one row per assignment x policy x
// attribute-rule join) into a UserAcl, an immutable value that answers
// Check, CheckAttribute, FilterAttributes and EffectivePermissions against
// any target distinguished name in bounded time, without locking or I/O on
// the hot path.
//
// The package owns none of the surrounding machinery: DN parsing, LDAP
// transport, password verification and row persistence are external
// collaborators. See pkg/ldaprows for one way to produce AclRow values from
// a live directory, and pkg/aclcache for one way to keep compiled UserAcl
// values warm across requests.
package acl
