package domain

import "errors"

// ErrProjectNotFound is returned when a project ID cannot be found in the store.
var ErrProjectNotFound = errors.New("project not found")

// ErrLastRow is returned when deleting a row would leave the grid empty.
var ErrLastRow = errors.New("cannot delete the last row")

// ErrIndexOutOfRange is returned when a row or column index does not address the grid.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrRestorePointNotFound is returned when a restore point index does not exist.
var ErrRestorePointNotFound = errors.New("restore point not found")

// ErrInvalidProject is returned when a project document is missing required fields.
var ErrInvalidProject = errors.New("invalid project")

// ErrPersistence marks a failure reported by the storage collaborator. Callers are
// expected to surface it; it is never retried automatically.
var ErrPersistence = errors.New("persistence failure")

// ErrInvalidStatus is returned when a status is not one of the known values.
var ErrInvalidStatus = errors.New("invalid project status")
