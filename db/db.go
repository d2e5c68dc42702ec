// Package db carries the schema migrations compiled into the binary,
// so applying them does not depend on the process working directory.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
