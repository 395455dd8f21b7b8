// Package middleware decorates project stores with cross-cutting behavior.
package middleware

import "github.com/aretw0/unitgrid/pkg/ports"

// Middleware allows wrapping a ProjectStore to add behavior.
type Middleware func(ports.ProjectStore) ports.ProjectStore
