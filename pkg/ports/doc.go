/*
Package ports defines the driven ports (interfaces) of the campusmate core.

These interfaces decouple the coordinator and its actors from external implementations,
allowing the same orchestration logic to run against different language-model providers,
knowledge backends and session stores.

# Key Interfaces

  - Actor: Anything the coordinator can route a message to.
  - Worker: A stateless executor of one plan step.
  - Advisor: The language-model backed decision, synthesis and moderation service.
  - KnowledgeStore: Static lookup and learned fact storage.
  - SessionStore / HistoryStore: Persistence of finished turns and conversation history.
  - DistributedLocker: Coordinates per-user turns across replicas.
*/
package ports
