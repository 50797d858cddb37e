// Package migration applies versioned SQL schema files to a SQLite database.
//
// Files are read from an fs.FS (normally an embedded directory) and must be named
// {version}_{description}.sql, for example "001_rooms_and_bookings.sql". Each file
// runs in its own transaction and is recorded in the schema_migrations table
// together with its checksum and execution time, so it is applied exactly once.
//
// Example usage:
//
//	manager := NewManager(NewScanner(files, "."), NewSQLiteExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
