/*
Package domain contains the core data model of the campusmate orchestration layer.

It defines the envelopes exchanged between actors, the per-turn Session record and
its state machine, plans and their steps, the structured results returned by
workers, and the tagged Decision produced by the planner. This package is kept
pure and free of I/O so that every other package can depend on it.

# Key Entities

  - Message: An immutable envelope routed through the coordinator queue.
  - Session: The mutable record of one user turn (status, plan, step results, answer).
  - Plan / PlanStep: An ordered list of worker tasks, fixed at submission.
  - ToolResult: The status-tagged outcome of one step.
  - Decision: RespondDirectly, Clarify or ExecutePlan.
  - Catalogue: The read-only description of worker capabilities.
*/
package domain
