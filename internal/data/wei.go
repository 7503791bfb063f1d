package data

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math/big"
	"strconv"
)

// ErrInvalidWeiFormat is returned when a JSON or database value can't be read as a
// decimal integer. Negative amounts decode; ValidateMovie rejects them.
var ErrInvalidWeiFormat = errors.New("invalid wei format")

// Wei is an amount of ether in its smallest unit. In JSON it is written as a decimal
// string so that clients parsing numbers as float64 don't lose precision.
type Wei struct {
	big.Int
}

func NewWei(i *big.Int) Wei {
	var w Wei
	if i != nil {
		w.Int.Set(i)
	}
	return w
}

// BigInt returns a copy of the amount.
func (w Wei) BigInt() *big.Int {
	return new(big.Int).Set(&w.Int)
}

func (w Wei) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(w.Int.String())), nil
}

// UnmarshalJSON accepts both "1000" and 1000.
func (w *Wei) UnmarshalJSON(jsonValue []byte) error {
	s := string(jsonValue)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return w.parse(s)
}

// Scan reads a NUMERIC column.
func (w *Wei) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return w.parse(string(v))
	case string:
		return w.parse(v)
	case int64:
		w.Int.SetInt64(v)
		return nil
	case nil:
		w.Int.SetInt64(0)
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidWeiFormat, src)
	}
}

func (w Wei) Value() (driver.Value, error) {
	return w.Int.String(), nil
}

func (w *Wei) parse(s string) error {
	if _, ok := w.Int.SetString(s, 10); !ok {
		return ErrInvalidWeiFormat
	}
	return nil
}
