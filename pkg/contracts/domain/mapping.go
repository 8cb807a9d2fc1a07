package domain

// ReferenceMapping maps a normalized (trimmed, upper-cased) reporter display
// name to its integer entity identifier, as declared by the companion
// reporter-reference sheet. Duplicate display names resolve last-write-wins;
// unparseable identifiers carry the UnresolvedID sentinel.
type ReferenceMapping map[string]int64

// RegistryMapping maps an integer entity identifier to its canonical legal
// name as recorded by the external registry. Authoritative once resolved.
type RegistryMapping map[int64]string
