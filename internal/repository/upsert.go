package repository

import (
	"errors"

	"gorm.io/gorm"
)

// NaturalKey is one column/value pair used to find an existing row.
// Keys with an empty value are skipped.
type NaturalKey struct {
	Column string
	Value  string
}

// UpsertByNaturalKey looks up a row of T by each key in order and returns the
// first match after applying update to it. When no key matches, build is
// called and the result inserted. The boolean reports whether a row was created.
//
// update receives the transaction so it can persist only the columns it
// changed; it may also reject the match by returning an error.
func UpsertByNaturalKey[T any](
	tx *gorm.DB,
	keys []NaturalKey,
	build func() *T,
	update func(tx *gorm.DB, row *T) error,
) (*T, bool, error) {
	db := tx.Session(&gorm.Session{})
	for _, k := range keys {
		if k.Value == "" {
			continue
		}
		var row T
		err := db.Where(k.Column+" = ?", k.Value).First(&row).Error
		if err == nil {
			if update != nil {
				if err := update(db, &row); err != nil {
					return nil, false, err
				}
			}
			return &row, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}

	row := build()
	if err := db.Create(row).Error; err != nil {
		return nil, false, err
	}
	return row, true, nil
}
