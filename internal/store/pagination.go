package store

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type CursorPage struct {
	Items      interface{} `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

type OffsetPage struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

func NewOffsetPage(items interface{}, total int64, page, pageSize int) *OffsetPage {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &OffsetPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// ClampPageSize maps out-of-range sizes to the default.
func ClampPageSize(size int) int {
	if size < 1 || size > MaxPageSize {
		return DefaultPageSize
	}
	return size
}

// SaleCursor is the keyset position of the last sale on a page, newest first.
type SaleCursor struct {
	SaleDatetime time.Time `json:"sale_datetime"`
	ID           int64     `json:"id"`
}

func EncodeCursor(cursor SaleCursor) string {
	data, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor returns a position after every existing sale for an empty cursor.
func DecodeCursor(encoded string) (SaleCursor, error) {
	var cursor SaleCursor
	if encoded == "" {
		return SaleCursor{
			SaleDatetime: time.Now().Add(time.Hour),
			ID:           math.MaxInt64,
		}, nil
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return cursor, err
	}

	err = json.Unmarshal(data, &cursor)
	return cursor, err
}
