package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/myk4040okothogodo/movienft/internal/validator"
)

// Movie is the off-chain view of a MovieNFT token. The contract owns every field;
// SyncedAt and Version are bookkeeping for the display cache.
type Movie struct {
	TokenID  int64     `json:"token_id"`
	SyncedAt time.Time `json:"-"`
	Name     string    `json:"name"`
	Year     int32     `json:"year,omitempty"`
	Genre    string    `json:"genre,omitempty"`
	Poster   string    `json:"poster,omitempty"`
	Shares   int64     `json:"shares"`
	Price    Wei       `json:"price"`
	Owner    string    `json:"owner,omitempty"`
	TokenURI string    `json:"token_uri,omitempty"` // set for tokens minted through mintNFT
	Version  int32     `json:"version"`             // incremented each time a sync changes the row
}

// MaxShares is the largest share count accepted for a new movie.
const MaxShares = 1_000_000

// ValidateMovie checks the fields a client supplies when minting.
func ValidateMovie(v *validator.Validator, movie *Movie) {
	v.Check(movie.Name != "", "name", "must be provided")
	v.Check(len(movie.Name) <= 500, "name", "must not be more than 500 bytes long")

	v.Check(movie.Year != 0, "year", "must be provided")
	v.Check(movie.Year >= 1888, "year", "must be greater than 1888")
	v.Check(movie.Year <= int32(time.Now().Year()+5), "year", "must not be more than five years in the future")

	v.Check(movie.Genre != "", "genre", "must be provided")
	v.Check(len(movie.Genre) <= 100, "genre", "must not be more than 100 bytes long")

	v.Check(movie.Poster != "", "poster", "must be provided")
	v.Check(validator.WebURL(movie.Poster), "poster", "must be a valid http or https URL")

	v.Check(movie.Shares > 0, "shares", "must be greater than zero")
	v.Check(movie.Shares <= MaxShares, "shares", fmt.Sprintf("must not be more than %d", MaxShares))

	v.Check(movie.Price.Sign() >= 0, "price", "must not be negative")
}

// MovieModel stores the display cache in PostgreSQL.
type MovieModel struct {
	DB *sql.DB
}

// ReplaceAll makes the cache match movies exactly. Rows whose contents are unchanged
// keep their version; rows missing from movies are deleted.
func (m MovieModel) ReplaceAll(movies []*Movie) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO movies (token_id, name, year, genre, poster, shares, price, owner, token_uri)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (token_id) DO UPDATE
		SET name = EXCLUDED.name, year = EXCLUDED.year, genre = EXCLUDED.genre,
			poster = EXCLUDED.poster, shares = EXCLUDED.shares, price = EXCLUDED.price,
			owner = EXCLUDED.owner, token_uri = EXCLUDED.token_uri,
			synced_at = NOW(), version = movies.version + 1
		WHERE (movies.name, movies.year, movies.genre, movies.poster, movies.shares, movies.price, movies.owner, movies.token_uri)
			IS DISTINCT FROM
			(EXCLUDED.name, EXCLUDED.year, EXCLUDED.genre, EXCLUDED.poster, EXCLUDED.shares, EXCLUDED.price, EXCLUDED.owner, EXCLUDED.token_uri)`

	ids := make([]int64, 0, len(movies))
	for _, movie := range movies {
		_, err := tx.ExecContext(ctx, upsert,
			movie.TokenID, movie.Name, movie.Year, movie.Genre, movie.Poster,
			movie.Shares, movie.Price, movie.Owner, movie.TokenURI,
		)
		if err != nil {
			return fmt.Errorf("upsert token %d: %w", movie.TokenID, err)
		}
		ids = append(ids, movie.TokenID)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM movies WHERE NOT (token_id = ANY($1))`, pq.Array(ids))
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (m MovieModel) Get(tokenID int64) (*Movie, error) {
	if tokenID < 0 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT token_id, synced_at, name, year, genre, poster, shares, price, owner, token_uri, version
		FROM movies
		WHERE token_id = $1`

	var movie Movie

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query, tokenID).Scan(
		&movie.TokenID,
		&movie.SyncedAt,
		&movie.Name,
		&movie.Year,
		&movie.Genre,
		&movie.Poster,
		&movie.Shares,
		&movie.Price,
		&movie.Owner,
		&movie.TokenURI,
		&movie.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &movie, nil
}

// GetAll returns a page of cached movies. An empty name or genre matches everything.
func (m MovieModel) GetAll(name string, genre string, filters Filters) ([]*Movie, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), token_id, synced_at, name, year, genre, poster, shares, price, owner, token_uri, version
		FROM movies
		WHERE (to_tsvector('simple', name) @@ plainto_tsquery('simple', $1) OR $1 = '')
		AND (LOWER(genre) = LOWER($2) OR $2 = '')
		ORDER BY %s %s, token_id ASC
		LIMIT $3 OFFSET $4`, filters.sortColumn(), filters.sortDirection())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query, name, genre, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	movies := []*Movie{}

	for rows.Next() {
		var movie Movie

		err := rows.Scan(
			&totalRecords,
			&movie.TokenID,
			&movie.SyncedAt,
			&movie.Name,
			&movie.Year,
			&movie.Genre,
			&movie.Poster,
			&movie.Shares,
			&movie.Price,
			&movie.Owner,
			&movie.TokenURI,
			&movie.Version,
		)
		if err != nil {
			return nil, Metadata{}, err
		}

		movies = append(movies, &movie)
	}

	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	metadata := calculateMetadata(totalRecords, filters.Page, filters.PageSize)

	return movies, metadata, nil
}

// Delete drops a single cached movie, used when a burn succeeded but the follow-up
// sync did not.
func (m MovieModel) Delete(tokenID int64) error {
	if tokenID < 0 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `DELETE FROM movies WHERE token_id = $1`, tokenID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}
