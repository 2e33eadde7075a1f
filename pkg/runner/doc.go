/*
Package runner hosts conversations outside of a web page.

It drives a ports.Conversation turn by turn, keeps the transcript in a
session.Manager and talks to the visitor through a pluggable IOHandler.
Answers that carry a UI plan can be replayed through an actuate.Scheduler.

# Key Components

  - Runner: the interactive chat loop used by `arcty chat`.
  - TextHandler: line based terminal IO with optional markdown rendering.
  - JSONHandler: JSON Lines IO for scripting and pipes.
  - Welcome and Reply: single turns under the session lock, shared with
    the HTTP and MCP adapters.

# Usage

	r := runner.NewRunner(assistant,
		runner.WithSessionID("visitor-1"),
		runner.WithManager(session.NewManager(store)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
