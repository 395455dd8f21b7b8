/*
Package ports defines the driven ports (interfaces) of the unitgrid project service.

These interfaces decouple the service from storage and transport, so the same logic
runs against memory, the filesystem, Redis or a SQL database, in one process or
behind several replicas.

# Key Interfaces

  - ProjectStore: loads and saves whole project documents.
  - DistributedLocker: serializes writes to one project across replicas.
  - Publisher: pushes update messages to subscribed sessions (local hub or Redis bus).
*/
package ports
