/*
Package domain contains the core data shapes shared by every unitgrid component.

It defines the grid matrix (Row, Grid), the persisted Project document, restore points
and the push-channel UpdateMessage. This package is kept pure and free of I/O, so the
engine, the storage adapters and the transport can all agree on one wire contract.

# Key Entities

  - Row: an ordered sequence of cell strings. Reads past the end yield "".
  - Grid: an ordered sequence of rows owned by exactly one Project.
  - Project: the persisted document (schema, grid, restore points).
  - UpdateMessage: the broadcast payload fanned out to subscribed sessions.
*/
package domain
