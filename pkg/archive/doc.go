// Package archive implements the core of a personal content archive:
// document ingestion with multi-signal kind classification, locale-aware
// word counting, remote text resolution, owner-or-admin scoped mutations,
// catalog search, and an append-only access ledger.
//
// Persistence and blob storage are pluggable through the Repository and
// BlobStore interfaces; implementations live under repo/ and storage/.
package archive
