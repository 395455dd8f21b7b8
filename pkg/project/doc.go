/*
Package project orchestrates server-side access to project documents.

The Manager wraps a ports.ProjectStore with a per-project mutex (reference counted so
idle projects hold no memory) and, optionally, a ports.DistributedLocker so that the
load, modify and save steps of one request never interleave with another request on
the same project, even across replicas.
*/
package project
