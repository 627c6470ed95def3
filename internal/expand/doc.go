// Package expand materializes the dynamic subtrees of replacement
// constructs (iteration, selection and copies) as keyed replacement groups.
//
// # Groups and Keys
//
// A construct publishes an ordered list of Specs, one per group it wants
// active. Each Spec carries a Key: the Index positions the group and names
// its instances (`<construct>.<template>[index]`); the Tag describes what the
// group was built from. Sync compares the new list to the groups it already
// holds for the construct:
//
//   - a group whose Key is requested again is kept, and shown again if it
//     was hidden, with its state untouched;
//   - a group at a requested Index but with a different Tag no longer
//     describes the same thing and is destroyed and rebuilt;
//   - a group that is not requested is hidden and retained, so shrinking
//     and regrowing restores it exactly;
//   - a construct switching kind destroys all of its groups.
//
// Every member is owned by the construct, and each group gets its own naming
// scope so sibling instances resolve each other before the rest of the
// document.
package expand
