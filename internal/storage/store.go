package storage

import "nexus/internal/session"

// Ensure SQLiteStore implements session.Store
var _ session.Store = (*SQLiteStore)(nil)

// DefaultFileName is the database created in the user's home directory.
const DefaultFileName = ".nexus.db"
