package database

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Timestamps are stored as RFC3339 text so rows stay readable with the
// sqlite CLI and sort lexicographically.

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func encodeNullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func decodeTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func decodeNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// String lists (tags, image URLs, entities) are stored as JSON arrays.

func encodeList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeList(s string) []string {
	if s == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil
	}
	if len(list) == 0 {
		return nil
	}
	return list
}
