/*
Package campusmate wires the campus Q&A assistant "旦旦学姐" into a runnable application.

A user turn enters through the Front Door, is moderated by the Gatekeeper, planned by the
Planner, executed by workers (utility and knowledge) and synthesized back into one answer.
All of these actors are driven by a single Coordinator that owns the session state machine.

# Usage

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	app, err := campusmate.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	reply, err := app.Ask(ctx, frontdoor.Request{UserID: "alice", Text: "现在几点了？"})
	fmt.Println(reply.Text)

New picks the Advisor (Anthropic, OpenAI or the offline rules advisor), the session archive
(memory or Redis, optionally PII masked and encrypted), the conversation history and the
knowledge store from the configuration. HTTPHandler and MCPServer expose the same Ask to
the transport adapters.
*/
package campusmate
