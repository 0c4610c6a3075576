package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"workdash/models"
)

var jsonNull = []byte("null")

// checkKeys は要素のキーを定義と照合します。
// encoding/json はキーを大文字小文字を区別せずに対応付けるため、デコード前に確認します
func checkKeys(fields map[string]json.RawMessage, schema models.Schema) error {
	known := schema.Keys()

	for key := range fields {
		for _, k := range known {
			if key != k && strings.EqualFold(key, k) {
				return fmt.Errorf("%w: %q (%q)", ErrKeyCase, key, k)
			}
		}
	}

	for _, group := range schema.Required {
		if present(fields, group) {
			continue
		}
		if group[0] == "id" {
			return ErrMissingID
		}
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(group, " / "))
	}

	return nil
}

func present(fields map[string]json.RawMessage, keys []string) bool {
	for _, k := range keys {
		if raw, ok := fields[k]; ok && !bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
			return true
		}
	}
	return false
}
