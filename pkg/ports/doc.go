/*
Package ports defines the driven ports (interfaces) of the espalier engine.

These interfaces decouple the rewriting core from external implementations, so
module definitions and search snapshots can live in memory, on disk, in a loam
repository or in Redis.

# Key Interfaces

  - ModuleLoader: Retrieves raw module definitions (YAML or JSON) by name.
  - SnapshotStore: Persists exported search sessions.
  - DistributedLocker: Serialises access to a session across replicas.
  - Evaluator: The string-level rewriting surface used by the HTTP and MCP adapters.
*/
package ports
