package db

import "database/sql"

// DB wraps the shared sql handle so store packages depend on one type.
type DB struct {
	*sql.DB
}
