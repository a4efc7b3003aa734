// Package sqlite provides the SQLite run archive.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Each archived run is stored as one row in runs plus its outcomes and
// ambiguity warnings in child tables.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.conciliar/data/runs.db
// ($CONCILIAR_HOME/data/runs.db when set).
package sqlite
