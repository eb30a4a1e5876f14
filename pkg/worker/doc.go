/*
Package worker provides the task executors that run plan steps.

Every worker satisfies ports.Worker: it declares its operations as domain.Capability values
and executes one operation per call, always returning a domain.ToolResult. Two concrete
workers exist, Utility (time, calculator, weather) and Knowledge (static lookup, learning,
learned-fact search). The capability catalogue consumed by the planner is built statically
from the worker list with NewCatalogue, and NewActor adapts a worker to the coordinator queue.
*/
package worker
