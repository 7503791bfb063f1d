package data

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

// newTestDB connects to MOVIENFT_TEST_DB_DSN and applies the migrations in a schema
// of its own, dropped when the test ends.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("MOVIENFT_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("MOVIENFT_TEST_DB_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatal(err)
	}
	// One connection, so search_path applies to every statement.
	db.SetMaxOpenConns(1)

	schema := fmt.Sprintf("movienft_test_%d", time.Now().UnixNano())
	if _, err := db.Exec("CREATE SCHEMA " + schema); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("SET search_path TO " + schema); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		db.Exec("DROP SCHEMA " + schema + " CASCADE")
		db.Close()
	})

	files, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*.up.sql"))
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(files)

	for _, f := range files {
		script, err := os.ReadFile(f)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := db.Exec(string(script)); err != nil {
			t.Fatalf("%s: %v", f, err)
		}
	}

	return db
}

func TestMovieModelReplaceAll(t *testing.T) {
	m := MovieModel{DB: newTestDB(t)}

	casablanca := &Movie{TokenID: 1, Name: "Casablanca", Year: 1942, Genre: "drama", Poster: "https://example.com/c.jpg", Shares: 10, Price: NewWei(big.NewInt(300)), Owner: "0x01"}
	heat := &Movie{TokenID: 3, Name: "Heat", Year: 1995, Genre: "Drama", Poster: "https://example.com/h.jpg", Shares: 30, Price: NewWei(big.NewInt(200)), Owner: "0x01"}
	alien := &Movie{TokenID: 2, Name: "Alien", Year: 1979, Genre: "horror", Poster: "https://example.com/a.jpg", Shares: 20, Price: NewWei(big.NewInt(100)), Owner: "0x02"}

	if err := m.ReplaceAll([]*Movie{casablanca, alien, heat}); err != nil {
		t.Fatal(err)
	}

	// Same snapshot again: nothing changes.
	if err := m.ReplaceAll([]*Movie{casablanca, alien, heat}); err != nil {
		t.Fatal(err)
	}
	got, err := m.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != 1 {
		t.Fatalf("got version %d after an identical sync; want 1", got.Version)
	}

	// Token 2 burned, shares bought on token 3.
	boughtHeat := *heat
	boughtHeat.Shares = 25
	if err := m.ReplaceAll([]*Movie{casablanca, &boughtHeat}); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Get(2); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected burned token to be gone, got %v", err)
	}
	if got, _ := m.Get(1); got.Version != 1 {
		t.Fatalf("got version %d for unchanged movie; want 1", got.Version)
	}
	got, err = m.Get(3)
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != 2 || got.Shares != 25 || got.Price.Int64() != 200 {
		t.Fatalf("unexpected updated movie %+v", got)
	}

	// An empty chain empties the cache.
	if err := m.ReplaceAll(nil); err != nil {
		t.Fatal(err)
	}
	movies, meta, err := m.GetAll("", "", Filters{Page: 1, PageSize: 10, Sort: "token_id", SortSafelist: safelist})
	if err != nil {
		t.Fatal(err)
	}
	if len(movies) != 0 || meta.TotalRecords != 0 {
		t.Fatalf("expected an empty cache, got %d movies", len(movies))
	}
}

func TestMovieModelGetAllMatchesMock(t *testing.T) {
	m := MovieModel{DB: newTestDB(t)}
	mock := NewMockMovieModel()

	movies := []*Movie{
		{TokenID: 1, Name: "Metropolis", Year: 1927, Genre: "sci-fi", Poster: "https://example.com/m.jpg", Shares: 1, Price: NewWei(big.NewInt(5)), Owner: "0x01"},
		{TokenID: 2, Name: "The Night of the Hunter", Year: 1955, Genre: "Thriller", Poster: "https://example.com/n.jpg", Shares: 1, Price: NewWei(big.NewInt(1)), Owner: "0x01"},
		{TokenID: 3, Name: "Night Moves", Year: 1975, Genre: "thriller", Poster: "https://example.com/nm.jpg", Shares: 1, Price: NewWei(big.NewInt(3)), Owner: "0x01"},
	}
	if err := m.ReplaceAll(movies); err != nil {
		t.Fatal(err)
	}
	if err := mock.ReplaceAll(movies); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, genre, sort string
	}{
		{"", "", "token_id"},
		{"metro", "", "token_id"},
		{"metropolis", "", "token_id"},
		{"night", "", "-year"},
		{"hunter night", "", "token_id"},
		{"", "THRILLER", "price"},
	}

	ids := func(movies []*Movie) []int64 {
		out := []int64{}
		for _, movie := range movies {
			out = append(out, movie.TokenID)
		}
		return out
	}

	for _, tt := range tests {
		f := Filters{Page: 1, PageSize: 10, Sort: tt.sort, SortSafelist: safelist}

		fromDB, _, err := m.GetAll(tt.name, tt.genre, f)
		if err != nil {
			t.Fatal(err)
		}
		fromMock, _, err := mock.GetAll(tt.name, tt.genre, f)
		if err != nil {
			t.Fatal(err)
		}

		if fmt.Sprint(ids(fromDB)) != fmt.Sprint(ids(fromMock)) {
			t.Errorf("name=%q genre=%q sort=%s: postgres %v, mock %v", tt.name, tt.genre, tt.sort, ids(fromDB), ids(fromMock))
		}
	}
}
