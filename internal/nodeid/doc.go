// internal/nodeid/doc.go

/*
Package nodeid provides a structured, type-safe representation for component
addresses within a document, based on the canonical format `path`.

The format is a dot-separated sequence of segments, e.g. `doc.rep.p[2].x`.
Indexed segments are produced by replacement constructs; static components
never carry an index.

Addresses are the stable identity used for variant commitments and copy
seeds, so the same logical instance always formats to the same string.
*/
package nodeid
