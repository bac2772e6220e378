// Package mongo provides the MongoDB client factory used by all stores,
// with connection retries and a healthcheck probe.
package mongo
