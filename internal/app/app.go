// Package app wires the workspace pieces together: it opens the database,
// applies migrations and loads configuration for the CLI and the server.
package app

import (
	"database/sql"
	"fmt"

	"smartdesk/internal/config"
	"smartdesk/internal/db"
	"smartdesk/internal/engine"
	"smartdesk/internal/migrate"
)

// Open prepares the workspace and returns a ready engine. The caller owns
// the connection and must close it.
func Open(workspace string) (engine.Engine, *sql.DB, error) {
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return engine.Engine{}, nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return engine.Engine{}, nil, fmt.Errorf("migrate: %w", err)
	}
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		conn.Close()
		return engine.Engine{}, nil, err
	}
	return engine.New(conn, cfg), conn, nil
}
