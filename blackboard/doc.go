// Package blackboard implements the shared working memory of an agent
// process: an append-only, type-indexed object store with named bindings,
// soft deletion ("hide"), explicit condition facts, and snapshot children
// for sub-process isolation.
//
// Objects are never removed once added; hiding excludes an object from
// retrieval while keeping it in the audit trail. The well-known default
// binding "it" refers to the last object added without an explicit name.
//
// Value resolution (GetValue / HasValue) reconciles a requested variable
// name and type name against the board: explicit bindings match first
// (including supertype matching through the DataDictionary), then aggregate
// types are synthesized from independently bound parts, then the default
// binding falls back to the most recent object of matching type. Failure to
// resolve is a planning fact, never an error.
package blackboard
