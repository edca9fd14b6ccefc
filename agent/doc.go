/*
Package agent executes plans against a blackboard.

A Process owns one blackboard and one planning system. Each iteration
it replans with its Planner, executes the first action of the best
plan, asserts the action's unbacked effects as explicit condition
facts, and repeats until a goal is satisfied (Completed), no plan
exists (Stuck), an action errors (Failed), or an early-termination
policy fires (Terminated).

Snapshots capture a process's blackboard state for later restoration;
memory, file, and redis stores are provided.
*/
package agent
