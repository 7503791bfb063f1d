package data

import (
	"database/sql"
	"errors"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

// MovieStore is the display cache for minted movies. The cache is rewritten from the
// chain after every mutating call, so it only exposes reads plus ReplaceAll.
type MovieStore interface {
	ReplaceAll(movies []*Movie) error
	Get(tokenID int64) (*Movie, error)
	GetAll(name string, genre string, filters Filters) ([]*Movie, Metadata, error)
	Delete(tokenID int64) error
}

type Models struct {
	Movies MovieStore
}

func NewModels(db *sql.DB) Models {
	return Models{
		Movies: MovieModel{DB: db},
	}
}

// NewMockModels returns a Models instance backed by an in-memory store.
func NewMockModels() Models {
	return Models{
		Movies: NewMockMovieModel(),
	}
}
