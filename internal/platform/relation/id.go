package relation

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

var ErrInvalidID = errors.New("invalid relation id")

// ID is a link to another record. Legacy rows and clients encode it as a
// raw number, a one-element list, or a JSON-encoded string of either; all
// decode to the same int64.
type ID int64

func (id ID) Int64() int64 {
	return int64(id)
}

func (id ID) Valid() bool {
	return id > 0
}

// Parse decodes any supported encoding from raw bytes.
func Parse(raw []byte) (ID, error) {
	return parse(raw, 0)
}

func parse(raw []byte, depth int) (ID, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if depth > 2 {
		return 0, fmt.Errorf("%w: nested too deep: %s", ErrInvalidID, text)
	}

	switch text[0] {
	case '[':
		var items []json.RawMessage
		if err := sonic.UnmarshalString(text, &items); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
		if len(items) != 1 {
			return 0, fmt.Errorf("%w: expected one element, got %d", ErrInvalidID, len(items))
		}
		return parse(items[0], depth+1)
	case '"':
		var inner string
		if err := sonic.UnmarshalString(text, &inner); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
		return parse([]byte(inner), depth+1)
	default:
		value, err := strconv.ParseInt(text, 10, 64)
		if err != nil || value <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidID, text)
		}
		return ID(value), nil
	}
}

func (id *ID) UnmarshalJSON(raw []byte) error {
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(id), 10)), nil
}

// Scan implements sql.Scanner for integer and text columns.
func (id *ID) Scan(src any) error {
	switch value := src.(type) {
	case int64:
		if value <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidID, value)
		}
		*id = ID(value)
		return nil
	case []byte:
		return id.UnmarshalJSON(value)
	case string:
		return id.UnmarshalJSON([]byte(value))
	case nil:
		return fmt.Errorf("%w: null", ErrInvalidID)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidID, src)
	}
}

func (id ID) Value() (driver.Value, error) {
	return int64(id), nil
}
