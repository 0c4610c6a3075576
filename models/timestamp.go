package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownTimestampFormat は対応していない日時形式を表します
var ErrUnknownTimestampFormat = errors.New("未対応の日時形式です")

// エンドポイントごとに異なる日時形式。タイムゾーンなしの形式はUTCとして扱う
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp は正規化済みの日時です。Valid が false の場合は未設定を表します
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// NewTimestamp は有効な Timestamp を作成します
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true}
}

// ParseTimestamp は既知の日時形式のいずれかで文字列を解析します
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: 空文字列", ErrUnknownTimestampFormat)
	}

	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownTimestampFormat, s)
}

// UnmarshalJSON は null と空文字列を未設定として扱い、それ以外は正規化します
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("日時は文字列である必要があります: %w", err)
	}

	if strings.TrimSpace(s) == "" {
		*t = Timestamp{}
		return nil
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}

	*t = NewTimestamp(parsed)
	return nil
}

// MarshalJSON はRFC 3339形式で出力します
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// String は表示用の文字列を返します
func (t Timestamp) String() string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format("2006-01-02 15:04:05")
}
