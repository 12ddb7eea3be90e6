package badger

import (
	"github.com/poiesic/reviewvec/core"
	"github.com/poiesic/reviewvec/storage"
)

// Key prefix for table rows. Full format: tbl:<table>:<review key>
const tablePrefix = "tbl"

// makeTablePrefix returns the scan prefix covering every row of table.
func makeTablePrefix(table string) []byte {
	return []byte(tablePrefix + ":" + table + ":")
}

// makeRowKey generates the key for one row of table.
func makeRowKey(table string, key core.ID) []byte {
	prefix := makeTablePrefix(table)
	id := storage.KeyString(key)
	buf := make([]byte, len(prefix)+len(id))
	offset := copy(buf, prefix)
	copy(buf[offset:], id)
	return buf
}
