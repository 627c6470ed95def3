// Package registry provides the central "glue" for the component catalog.
//
// The Registry maps the block type written in a document (e.g. "answer") to
// the statevar.Type implementing it. Catalog packages contribute their types
// through the Module interface; the application registers every module at
// startup and validates the result before any document is loaded.
package registry
