// Package spec holds GR(1) specifications: the immutable Spec value every
// algorithm receives, the formula compiler that turns text into symbolic
// sets, and the YAML document loader.
//
// A Spec carries
//   - environment and system transition relations, as conjunct parts and
//     as their conjunction;
//   - ordered environment and system liveness goals;
//   - environment and system initial sets with a "declared" flag each;
//   - the InitMode that decides how the initial sets are read.
//
// Specs are built once and never mutated. Derived specs (a goal added or
// removed) are fresh values sharing the same symbolic Manager.
package spec
