// Package core provides the type-safe HTTP handler layer shared by all
// API modules: typed handler functions, request binding, JSON responses,
// and the HTTP error vocabulary handlers map domain errors onto.
package core
