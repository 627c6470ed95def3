// Package answer evaluates award conditions against responses.
//
// A condition is an HCL expression. Logical connectives and comparisons are
// interpreted here rather than by HCL so that an equality can be partially
// satisfied:
//
//	a == b    fraction of matching sub-positions of a and b
//	a != b    1 when a == b is not fully satisfied, else 0
//	x && y    mean of both sides
//	x || y    the larger side
//	!x        1 - x
//	a < b     1 or 0, and likewise for the other orderings
//
// Any other expression is evaluated as a boolean.
//
// # Fractions
//
// Sequences (lists, tuples and matrices as tuples of tuples) compare
// position by position. The denominator is the length of the longer
// operand, so positions present on one side only count as unmatched and a
// shape mismatch degrades instead of failing. Nested sequences recurse. Points
// and other objects are compared as single values.
//
// With unordered comparison the top-level elements are paired by the best
// one-to-one assignment, so no element is credited twice.
//
// # Leaf equality
//
// Numbers match within the configured tolerance. Symbolic expressions match
// when their normalized forms are identical, and a constant expression also
// matches a number by value. Strings match after trimming surrounding space.
package answer
