// Package database persists product media rows and admin authentication
// state in SQLite.
//
// Media rows store the primary filename plus the filename of every
// generated variant as plain string columns; the files themselves live in
// the flat upload directory and are owned by the pipeline. Admin access
// uses a single bcrypt-hashed password and token sessions with a TTL.
package database
