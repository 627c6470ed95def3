// Package components is the catalog of component types a document may use.
//
// Every type is a statevar.Type assembled from fragments: a type "has" the
// variables its fragments declare. Module registers the whole catalog with
// a registry:
//
//	reg := registry.New(&components.Module{})
//
// Replacement constructs (repeat, select, select_from_sequence, copy) are
// template types. They publish their active instances through an array of
// addresses in their "children" variable, which is what makes them show up
// in ActiveChildren walks.
package components
