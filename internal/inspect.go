package internal

import (
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// InspectRow describes one stored key. Values are never decoded here,
// so message ciphertext and password hashes stay out of the output.
type InspectRow struct {
	Key       string `json:"key"`
	Type      string `json:"type"`
	Namespace string `json:"namespace"`
	Timestamp string `json:"timestamp"`
	EntityID  string `json:"entityId"`
	Size      int    `json:"size"`
	Detail    string `json:"detail,omitempty"`
}

type RowMapper func(key string, val []byte) InspectRow

// ScanKeys walks keys under prefix in key order, returning at most limit rows.
func ScanKeys(db *badger.DB, prefix string, limit int, mapper RowMapper) ([]InspectRow, error) {
	if mapper == nil {
		mapper = DefaultMapper
	}
	rows := make([]InspectRow, 0)
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if limit > 0 && len(rows) >= limit {
				return nil
			}
			item := it.Item()
			err := item.Value(func(val []byte) error {
				rows = append(rows, mapper(string(item.KeyCopy(nil)), val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

func DefaultMapper(key string, val []byte) InspectRow {
	parts := strings.Split(key, ":")
	row := InspectRow{
		Key:       key,
		Type:      "raw",
		Namespace: "-",
		Timestamp: "-",
		EntityID:  "-",
		Size:      len(val),
	}

	switch {
	case parts[0] == "group" && len(parts) == 2:
		row.Type = "group"
		row.EntityID = parts[1]
	case parts[0] == "user" && len(parts) == 2:
		row.Type = "user"
		row.EntityID = parts[1]
	case parts[0] == "msg" && len(parts) == 4:
		row.Type = "message"
		row.Namespace = parts[1]
		if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
			row.Timestamp = time.Unix(0, tsNano).UTC().Format(time.RFC3339)
		}
		row.EntityID = parts[3]
	case parts[0] == "seq":
		row.Type = "sequence"
	}
	return row
}
