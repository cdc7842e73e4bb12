package domain

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Cursor is the store's last evaluated key: the primary key of the last item read.
type Cursor struct {
	TenantID string `json:"tenant_id" dynamodbav:"tenant_id"`
	Codigo   string `json:"codigo" dynamodbav:"codigo"`
}

// EncodeCursor returns base64(JSON(cursor)), or "" for a nil cursor.
func EncodeCursor(c *Cursor) (string, error) {
	if c == nil {
		return "", nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeCursor reverses EncodeCursor. An empty token yields a nil cursor.
func DecodeCursor(token string) (*Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	// '+' arrives as a space when the client did not escape the query value.
	token = strings.ReplaceAll(token, " ", "+")

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		if raw, err = base64.RawStdEncoding.DecodeString(token); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
		}
	}

	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.TenantID == "" || c.Codigo == "" {
		return nil, ErrInvalidCursor
	}
	return &c, nil
}
