/*
Package workflow builds higher-level control flow out of planning
primitives.

RepeatUntilBuilder synthesizes a bounded generate-evaluate-retry loop as
a small planning system: a generator action that appends attempts to a
ResultHistory, dynamic conditions tracking whether a result exists and
whether it is acceptable, and a consolidation action that binds the best
attempt when the acceptance check passes or the iteration cap is
reached. The loop runs as an ordinary agent process on a spawned child
blackboard, so intermediate attempts never leak to the parent.
*/
package workflow
