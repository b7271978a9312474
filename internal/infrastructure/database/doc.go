// Package database provides the SQLite connection for the relay node.
//
// The node persists device configuration only (network credentials and
// provisioning values kept by the settings package). The package manages:
//   - Opening the database file with WAL mode and a busy timeout
//   - Applying embedded schema migrations
//   - Transaction helpers and health checks
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql.
package database
