// Package hotswap inserts or removes a system goal of a synthesized
// strategy without re-solving the whole specification.
//
// What
//
//   - AddSysGoal places a new goal after the existing goal nearest to it
//     under a Metric and splices two local reachability games into the goal
//     cycle: one into the new goal, one back out of it.
//   - RemoveSysGoal deletes the nodes of a goal mode and of the mode after
//     it and bridges the gap with one local reachability game.
//   - Metric reads groups of boolean variables as unsigned integers and
//     measures L1 distances between states.
//
// Goal modes are renumbered so that the mode of every node still names the
// goal it pursues in the new goal list.
//
// Errors
//
//   - ErrUnsupported     preconditions this package refuses to work around.
//   - ErrGoalModeAbsent  the strategy holds no node of the affected modes.
//   - ErrSwapInfeasible  a local game has no solution.
package hotswap
