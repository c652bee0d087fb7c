package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON is a wrapper around gorm.io/datatypes.JSON to allow for custom data type mapping
type JSON struct {
	datatypes.JSON
}

// Value promotes the embedded JSON's Value method
func (j JSON) Value() (driver.Value, error) {
	if len(j.JSON) == 0 {
		return "{}", nil
	}
	return j.JSON.Value()
}

// Scan promotes the embedded JSON's Scan method
func (j *JSON) Scan(value interface{}) error {
	return j.JSON.Scan(value)
}

// GormDBDataType ensures the correct data type is used for each database driver.
func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonColumnType(db)
}

// JSONList is a typed JSON array column. NULL or empty values decode to an empty list.
type JSONList[T any] []T

// Value encodes the list, writing [] for a nil list
func (l JSONList[T]) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]T(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan decodes a JSON array column
func (l *JSONList[T]) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = JSONList[T]{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("JSONList: unsupported scan type %T", value)
	}

	if len(raw) == 0 || string(raw) == "null" {
		*l = JSONList[T]{}
		return nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("JSONList: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	*l = JSONList[T](items)
	return nil
}

// GormDBDataType maps the list to each dialect's JSON column type
func (JSONList[T]) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonColumnType(db)
}

// Slice returns the list, never nil
func (l JSONList[T]) Slice() []T {
	if l == nil {
		return []T{}
	}
	return []T(l)
}

// jsonColumnType resolves the issue where MSSQL does not support the 'json' data type.
func jsonColumnType(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
