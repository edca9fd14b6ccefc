// Package types provides the lowest-level shared types of the planning core.
//
// It has no internal dependencies and defines the contracts the other
// packages agree on:
//
//   - Determination: three-valued condition truth (True / False / Unknown)
//     with Kleene logic connectives
//   - Error / ErrorCode: structured error taxonomy for configuration and
//     execution failures ("no plan" and "value not resolvable" are planning
//     facts, not errors, and never appear here)
package types
