/*
Package arcty is a scripted website assistant: it greets visitors and answers
what they type by walking a regex-keyed decision tree.

# Concept

A script (YAML, JSON or TOML) lists the welcome texts and a tree of paths.
Each path has a pattern; a path either nests more paths or holds an answer.
An input descends the tree taking, at each level, the first pattern that
matches, until it reaches an answer. Nothing else is tried once a branch has
been entered, so authors order siblings from most to least specific.

	paths:
	  - pattern: hello
	    paths:
	      - pattern: world
	        answer: hi!
	  - pattern: /^bye$/i
	    answer: Goodbye!

Answers may carry a plan of UI steps (clicks and typing) that a host replays
on the page with package actuate.

# Usage

	a, err := arcty.New("bot.yaml")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state := domain.NewState("visitor-1")

	state, reply, err := a.Welcome(ctx, state)
	// show reply.Messages ...

	state, reply, err = a.Reply(ctx, state, "hello world")
	// reply.Messages ends with "hi!"

The Assistant keeps no sessions. Hosts persist the returned state with a
ports.StateStore, usually through a session.Manager, and run one turn per
call. The CLI (cmd/arcty), the HTTP server and the MCP server are such hosts.

# Hot reload

Reload re-reads the script file; Watch does so on every change. A broken
edit is logged and the previous script stays in service.
*/
package arcty
