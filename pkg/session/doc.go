/*
Package session serializes access to conversation state.

A Manager hands out one lock per session ID, reference counted so idle
sessions cost nothing, and optionally takes a DistributedLocker as well
when several replicas share a store. Hosts run each turn through Update so
two messages for the same visitor can never interleave.
*/
package session
