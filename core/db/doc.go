// Package db defines the minimal normalized query capability shared by the
// persistence backends. Both the hosted REST backend and the direct
// Postgres backend implement Querier, so application code can read and
// write rows without knowing which backend is active.
//
// The contract is intentionally small: column-equality filtered CRUD over
// generic rows plus a connectivity healthcheck. Row values keep whatever
// scalar conventions the active backend's decoder produced; full value
// normalization across backends is a known gap inherited from the reference
// design.
package db
