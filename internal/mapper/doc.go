// Package mapper converts raw provider payloads, decoded as generic JSON
// values, into the normalized domain entities. One file per provider.
//
// Mappers are lenient about optional metrics and strict about identity:
// a missing reading yields a nil field, but missing coordinates or a missing
// timestamp reject the whole payload, since a record that cannot be placed
// in space and time is unusable downstream.
package mapper
