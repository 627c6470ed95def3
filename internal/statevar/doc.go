// Package statevar describes component types as tables of state-variable
// definitions.
//
// A Type "has" exactly the variables its table declares. Shared behavior is
// composed from Fragments, so "has a numeric value" or "is a list
// container" is a slice of definitions appended to a type rather than a base
// type to inherit from. Later fragments override earlier ones by name.
//
// Definitions never touch the graph directly. They receive a Reader that
// records every value they read, so the dependency set of a variable is
// always exactly what its last evaluation used.
package statevar
