// Package engine is the resolution engine: it computes state variables on
// demand, records what each computation read, and invalidates exactly the
// dependents of a written value.
//
// # Reads
//
// Read is pull-based. A fresh slot returns its memoized value. A stale slot
// is marked resolving, its definition runs against a Reader that records
// every slot it touches, and the recorded set replaces the slot's previous
// dependencies. Definitions read other slots through the same path, so the
// evaluation recurses; the engine keeps the chain of slots being computed
// as an explicit frame stack.
//
// # Cycles
//
// Reaching a slot that is already resolving means the frames from that slot
// to the top of the stack form a cycle. Every slot on it is marked cyclic
// and ends with its definition's placeholder value, an error diagnostic
// pointing at the component is recorded once, and evaluation of everything
// else continues.
//
// # Writes
//
// Only essential variables are written from outside. A write stores the
// value, drops the slot's dependencies and walks the reverse index marking
// dependents stale without computing anything. Array elements are separate
// slots, so writing one element invalidates only the consumers that read
// that element (or the whole array).
//
// # Attributes
//
// Attribute expressions are HCL. References are classified with exprref
// and bound in the evaluation context from slot reads: `name` reads the
// component's default variable, `name.var` a named variable and
// `name.var[i]` a single element. `count` and `each` are bound from the
// iteration a replacement group was created for. An evaluation error yields
// NaN.
package engine
