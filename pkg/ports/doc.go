/*
Package ports defines the interfaces between the arcty core and the outside
world.

These interfaces decouple the assistant from its storage backends and from
the surfaces that render it.

# Key Interfaces

  - Conversation: the greeting and reply core driven by the hosts.
  - StateStore: persists session State between visits.
  - DistributedLocker: serializes access to a session across replicas.
  - Dispatcher: performs scripted clicks and typing on the page.
*/
package ports
