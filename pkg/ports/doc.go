/*
Package ports defines the driven ports (interfaces) for the Stateline service.

These interfaces decouple the core logic from external implementations,
allowing the service to work with various storage backends and lock
providers.

# Key Interfaces

  - DefinitionStore / InstanceStore: persistence for the two entity kinds,
    upsert-by-id with atomic per-key saves.
  - DistributedLocker: optional cross-replica locking for serializing action
    execution on a single instance.
*/
package ports
