package data

import (
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
)

// MockMovieModel is an in-memory MovieStore with the same semantics as MovieModel.
type MockMovieModel struct {
	mu     sync.RWMutex
	movies map[int64]*Movie
}

func NewMockMovieModel() *MockMovieModel {
	return &MockMovieModel{movies: make(map[int64]*Movie)}
}

func (m *MockMovieModel) ReplaceAll(movies []*Movie) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[int64]*Movie, len(movies))
	for _, movie := range movies {
		cp := *movie
		cp.Price = NewWei(movie.Price.BigInt())
		cp.SyncedAt = time.Now()
		cp.Version = 1

		if old, ok := m.movies[movie.TokenID]; ok {
			cp.Version = old.Version
			if !sameContents(old, &cp) {
				cp.Version++
			} else {
				cp.SyncedAt = old.SyncedAt
			}
		}
		next[movie.TokenID] = &cp
	}
	m.movies = next

	return nil
}

func (m *MockMovieModel) Get(tokenID int64) (*Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	movie, ok := m.movies[tokenID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *movie
	return &cp, nil
}

func (m *MockMovieModel) GetAll(name string, genre string, filters Filters) ([]*Movie, Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	column, desc := filters.sortColumn(), filters.sortDirection() == "DESC"

	matched := []*Movie{}
	for _, movie := range m.movies {
		if !matchesWords(movie.Name, name) {
			continue
		}
		if genre != "" && !strings.EqualFold(movie.Genre, genre) {
			continue
		}
		cp := *movie
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		c := compareMovies(a, b, column)
		if c == 0 {
			return a.TokenID < b.TokenID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})

	total := len(matched)
	start := filters.offset()
	if start > total {
		start = total
	}
	end := start + filters.limit()
	if end > total {
		end = total
	}

	return matched[start:end], calculateMetadata(total, filters.Page, filters.PageSize), nil
}

func (m *MockMovieModel) Delete(tokenID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.movies[tokenID]; !ok {
		return ErrRecordNotFound
	}
	delete(m.movies, tokenID)
	return nil
}

func compareMovies(a, b *Movie, column string) int {
	switch column {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "year":
		return int(a.Year) - int(b.Year)
	case "price":
		return a.Price.Cmp(&b.Price.Int)
	default:
		switch {
		case a.TokenID < b.TokenID:
			return -1
		case a.TokenID > b.TokenID:
			return 1
		}
		return 0
	}
}

func sameContents(a, b *Movie) bool {
	return a.Name == b.Name &&
		a.Year == b.Year &&
		a.Genre == b.Genre &&
		a.Poster == b.Poster &&
		a.Shares == b.Shares &&
		a.Price.Cmp(&b.Price.Int) == 0 &&
		a.Owner == b.Owner &&
		a.TokenURI == b.TokenURI
}

// matchesWords mirrors plainto_tsquery('simple', query) against to_tsvector('simple',
// name): every word of query must appear as a whole word in name, ignoring case.
// Only the empty string matches everything.
func matchesWords(name, query string) bool {
	if query == "" {
		return true
	}
	wanted := words(query)
	if len(wanted) == 0 {
		return false
	}

	have := make(map[string]bool)
	for _, w := range words(name) {
		have[w] = true
	}

	for _, w := range wanted {
		if !have[w] {
			return false
		}
	}
	return true
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
