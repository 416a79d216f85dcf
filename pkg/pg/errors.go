package pg

import "errors"

var (
	ErrFailedToParseDBConfig    = errors.New("failed to parse database config")
	ErrFailedToOpenDBConnection = errors.New("failed to open database connection")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
	ErrMigrationPathNotProvided = errors.New("migrations path is not provided")
	ErrMigrationsDirNotFound    = errors.New("migrations directory does not exist")
)
