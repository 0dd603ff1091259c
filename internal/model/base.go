package model

import "github.com/google/uuid"

// assignID gives a row its primary key before insert. IDs are generated in the
// application so the same models work on Postgres and on the SQLite test database.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
