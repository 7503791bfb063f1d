package data

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/myk4040okothogodo/movienft/internal/validator"
)

func validMovie() *Movie {
	return &Movie{
		Name:   "Casablanca",
		Year:   1942,
		Genre:  "drama",
		Poster: "https://example.com/casablanca.jpg",
		Shares: 100,
		Price:  NewWei(big.NewInt(1_000_000_000_000_000)),
	}
}

func TestValidateMovie(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Movie)
		field  string
	}{
		{"valid", func(m *Movie) {}, ""},
		{"missing name", func(m *Movie) { m.Name = "" }, "name"},
		{"year too early", func(m *Movie) { m.Year = 1700 }, "year"},
		{"year too late", func(m *Movie) { m.Year = 3000 }, "year"},
		{"missing genre", func(m *Movie) { m.Genre = "" }, "genre"},
		{"poster not a url", func(m *Movie) { m.Poster = "poster.jpg" }, "poster"},
		{"zero shares", func(m *Movie) { m.Shares = 0 }, "shares"},
		{"too many shares", func(m *Movie) { m.Shares = MaxShares + 1 }, "shares"},
		{"negative price", func(m *Movie) { m.Price = NewWei(big.NewInt(-1)) }, "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMovie()
			tt.mutate(m)

			v := validator.New()
			ValidateMovie(v, m)

			if tt.field == "" {
				if !v.Valid() {
					t.Fatalf("expected valid movie, got %v", v.Errors)
				}
				return
			}
			if _, ok := v.Errors[tt.field]; !ok {
				t.Fatalf("expected error for %q, got %v", tt.field, v.Errors)
			}
		})
	}
}

func TestWeiJSON(t *testing.T) {
	w := NewWei(new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil))

	b, err := json.Marshal(w)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"1000000000000000000000000000000"` {
		t.Fatalf("unexpected encoding %s", b)
	}

	for _, in := range []string{`"250"`, `250`} {
		var got Wei
		if err := json.Unmarshal([]byte(in), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if got.Int64() != 250 {
			t.Fatalf("unmarshal %s: got %s", in, got.String())
		}
	}

	// Sign is left to ValidateMovie.
	var negative Wei
	if err := json.Unmarshal([]byte(`"-1"`), &negative); err != nil || negative.Sign() >= 0 {
		t.Fatalf("unmarshal -1: got %s, %v", negative.String(), err)
	}

	var bad Wei
	if err := json.Unmarshal([]byte(`"1.5"`), &bad); !errors.Is(err, ErrInvalidWeiFormat) {
		t.Fatalf("expected ErrInvalidWeiFormat, got %v", err)
	}
}

func TestWeiScan(t *testing.T) {
	var w Wei
	if err := w.Scan([]byte("12345678901234567890")); err != nil {
		t.Fatal(err)
	}
	if w.String() != "12345678901234567890" {
		t.Fatalf("got %s", w.String())
	}

	v, err := w.Value()
	if err != nil {
		t.Fatal(err)
	}
	if v != "12345678901234567890" {
		t.Fatalf("got driver value %v", v)
	}

	if err := w.Scan(3.5); !errors.Is(err, ErrInvalidWeiFormat) {
		t.Fatalf("expected ErrInvalidWeiFormat, got %v", err)
	}
}

func TestCalculateMetadata(t *testing.T) {
	got := calculateMetadata(12, 2, 5)
	want := Metadata{CurrentPage: 2, PageSize: 5, FirstPage: 1, LastPage: 3, TotalRecords: 12}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if calculateMetadata(0, 1, 20) != (Metadata{}) {
		t.Fatal("expected empty metadata for no records")
	}
}

func TestSortColumnPanicsOnUnsafeValue(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()

	f := Filters{Sort: "name; DROP TABLE movies", SortSafelist: []string{"name"}}
	f.sortColumn()
}
