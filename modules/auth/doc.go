// Package auth exposes account registration and lookup over HTTP.
package auth
