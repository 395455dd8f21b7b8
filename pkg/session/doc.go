/*
Package session is the editing side of a project: one Session holds the active
project's grid engine, writes every committed edit back through a Backend, and
folds incoming update messages into the local grid.

A Session replaces the page-global state of a browser editor with an explicit
value. Switching project resets the undo history. Updates for another project are
discarded, and an update is applied only when its grid differs from the local one,
so a session's own echoed broadcasts cause no re-render.

Both the root unitgrid.Service (in process) and client.Client (over HTTP) satisfy
Backend.
*/
package session
