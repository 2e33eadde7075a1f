/*
Package domain contains the shared models of the arcty assistant.

It is kept free of I/O so the runtime, the stores and the hosts (CLI, HTTP,
MCP) can all exchange the same values.

# Key Entities

  - Message: one line of the conversation (bot, user or a time break).
  - State: the per-session snapshot (seen flag, last timestamp, transcript).
  - Action and Plan: scripted UI steps (clicks and typing) attached to an answer.
  - Reply: what the engine returns for a single user input.
*/
package domain
