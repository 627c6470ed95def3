/*
Package mathexpr implements the small symbolic-math layer used by math,
function and mathinput components.

Expressions are parsed from author or learner text into a Node tree. Two
trees are considered equal only when their normalized forms print
identically. Normalization flattens sums and products, sorts their operands,
and pulls signs outward; it never simplifies (2x + 3x stays distinct from 5x).

Evaluation follows two policies:

  - Numeric: division by zero and logarithms of non-positive numbers yield
    NaN; every other operation follows IEEE-754.
  - Symbolic: division at a pole yields an infinity whose sign is the sign
    of the one-sided limit approached from the right of the function's
    variable; 0/0 stays NaN.

Domains are intervals with open or closed endpoints. Evaluation outside a
domain, or on an open endpoint, yields NaN under either policy.
*/
package mathexpr
