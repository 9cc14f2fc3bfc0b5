package loader

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/oakwood-commons/tv/internal/store"
)

var (
	parquetMagic = []byte("PAR1")
	arrowMagic   = []byte("ARROW1")
	gzipMagic    = []byte{0x1f, 0x8b}
	zstdMagic    = []byte{0x28, 0xb5, 0x2f, 0xfd}
	// Arrow IPC streams start with a continuation marker.
	arrowStreamMagic = []byte{0xff, 0xff, 0xff, 0xff}
)

// sniffLen is how many leading bytes detection looks at.
const sniffLen = 512

// detectCompression strips a compression suffix from path and reports the
// wrapper, falling back to magic bytes when the suffix is absent.
func detectCompression(path string, head []byte) (string, store.Compression) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gz", ".gzip":
		return strings.TrimSuffix(path, filepath.Ext(path)), store.CompressionGzip
	case ".zst", ".zstd":
		return strings.TrimSuffix(path, filepath.Ext(path)), store.CompressionZstd
	}
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return path, store.CompressionGzip
	case bytes.HasPrefix(head, zstdMagic):
		return path, store.CompressionZstd
	}
	return path, store.CompressionNone
}

// formatFromExtension maps a (decompressed) file name to a format.
func formatFromExtension(path string) (store.Format, rune) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return store.FormatCSV, ','
	case ".tsv", ".tab":
		return store.FormatCSV, '\t'
	case ".parquet", ".pq":
		return store.FormatParquet, 0
	case ".arrow", ".ipc", ".feather":
		return store.FormatArrow, 0
	}
	return store.FormatUnknown, 0
}

// sniffFormat inspects decompressed leading bytes.
func sniffFormat(head []byte) (store.Format, rune) {
	switch {
	case bytes.HasPrefix(head, parquetMagic):
		return store.FormatParquet, 0
	case bytes.HasPrefix(head, arrowMagic), bytes.HasPrefix(head, arrowStreamMagic):
		return store.FormatArrow, 0
	case looksLikeText(head):
		if sniffTabs(head) {
			return store.FormatCSV, '\t'
		}
		return store.FormatCSV, ','
	}
	return store.FormatUnknown, 0
}

func looksLikeText(head []byte) bool {
	if len(head) == 0 {
		return false
	}
	// A multi-byte rune may be cut at the sniff boundary.
	for trim := 0; trim < utf8.UTFMax-1 && len(head) > 1 && !utf8.Valid(head); trim++ {
		head = head[:len(head)-1]
	}
	if !utf8.Valid(head) {
		return false
	}
	for _, b := range head {
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' {
			return false
		}
	}
	return true
}

// sniffTabs reports whether the first line is tab separated rather than comma separated.
func sniffTabs(head []byte) bool {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	return bytes.Count(line, []byte{'\t'}) > bytes.Count(line, []byte{','})
}
