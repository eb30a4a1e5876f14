/*
Package coordinator implements the session registry and message router of campusmate.

A Coordinator owns every in-flight Session, one FIFO queue shared by all sessions, and the
drive loop that pops a message and hands it to the addressed actor (gatekeeper, planner or
a worker) or interprets it as a control transition when it is addressed to the coordinator.

Actors never call each other. They return follow-up messages, which the coordinator enqueues
after the handler returns, so causal order within a session is preserved. A panic or error in
any actor fails only the session that message belonged to.

	c := coordinator.New(coordinator.WithLogger(logger))
	c.Register(gate, plan, worker.NewActor(utility), worker.NewActor(knowledge))
	_ = c.RegisterSession(id, userID, text)
	c.Enqueue(domain.NewMessage(id, domain.FrontDoorID, domain.CoordinatorID, domain.MessageNewQuery, payload))
	outcome, err := c.RunUntilTerminal(ctx, id, 3*time.Minute)
*/
package coordinator
