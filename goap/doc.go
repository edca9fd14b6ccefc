// Package goap implements goal-oriented action planning: the static
// description of what an agent can do (actions with preconditions and
// effects, goals, named conditions), the world-state determination that
// grounds those condition names in a live blackboard, and the least-cost
// search that turns them into executable plans.
//
// The planner never executes actions and never errors for "no plan exists";
// a nil plan is the defined stuck outcome. For a fixed system and world
// state planning is deterministic: equal-cost frontier entries are ordered
// lexicographically by the joined action-name path.
package goap
