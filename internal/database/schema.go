package database

import _ "embed"

// Schema is the complete current database schema, generated from the
// migration files. Tests apply it directly to in-memory databases instead
// of running the migration machinery.
//
//go:embed schema.sql
var Schema string

// This package's generated artifacts are refreshed with:
//   go generate ./internal/database

//go:generate sh -c "cd ../.. && go run internal/database/tools/generate_schema.go"
