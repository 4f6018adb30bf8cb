package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// Flag stores a boolean as 0/1 so the same column type works on Oracle
// NUMBER(1), Postgres SMALLINT and SQLite INTEGER.
type Flag bool

// Value implements the driver.Valuer interface
func (f Flag) Value() (driver.Value, error) {
	if f {
		return int64(1), nil
	}
	return int64(0), nil
}

// Scan implements the sql.Scanner interface
func (f *Flag) Scan(value interface{}) error {
	b, err := parseFlag(value)
	if err != nil {
		return err
	}
	*f = Flag(b)
	return nil
}

// NullFlag is a Flag that may be NULL.
type NullFlag struct {
	Flag  Flag
	Valid bool
}

// Value implements the driver.Valuer interface
func (n NullFlag) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Flag.Value()
}

// Scan implements the sql.Scanner interface
func (n *NullFlag) Scan(value interface{}) error {
	if value == nil {
		n.Flag, n.Valid = false, false
		return nil
	}
	n.Valid = true
	return n.Flag.Scan(value)
}

// NullFlagFrom converts an optional bool.
func NullFlagFrom(b *bool) NullFlag {
	if b == nil {
		return NullFlag{}
	}
	return NullFlag{Flag: Flag(*b), Valid: true}
}

// Ptr returns nil for NULL.
func (n NullFlag) Ptr() *bool {
	if !n.Valid {
		return nil
	}
	b := bool(n.Flag)
	return &b
}

func parseFlag(value interface{}) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case int32:
		return v != 0, nil
	case int:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case []byte:
		return parseFlagString(string(v))
	case string:
		return parseFlagString(v)
	default:
		return false, fmt.Errorf("Flag Scan: unsupported type %T", value)
	}
}

func parseFlagString(s string) (bool, error) {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n != 0, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("Flag Scan: cannot parse %q", s)
	}
	return b, nil
}
