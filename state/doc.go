// Package state assembles parsed save sections into a queryable game
// state: characters, titles, dynasties, faiths, cultures, memories and
// artifacts, linked to each other through lazy handles.
//
// Ingestion stores raw section trees and a few cheap cross-entity indexes.
// Entities are built on first access, exactly once per (kind, id), and may
// reference each other cyclically: a placeholder enters the registry
// before its fields populate, so mutual references terminate.
package state
