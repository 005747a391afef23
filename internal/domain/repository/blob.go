package repository

import (
	"errors"
	"io"
	"net/url"
	"strings"
)

// BlobChunkSize tamaño de bloque con el que los adaptadores reportan progreso.
const BlobChunkSize = 256 * 1024

// BlobURL construye la URL pública de un blob servido bajo /files/.
func BlobURL(baseURL, path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.TrimRight(baseURL, "/") + "/files/" + strings.Join(parts, "/")
}

// CopyWithProgress copia src en dst por bloques e invoca fn tras cada bloque.
func CopyWithProgress(dst io.Writer, src io.Reader, total int64, fn ProgressFunc) (int64, error) {
	buf := make([]byte, BlobChunkSize)
	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, werr
			}
			if w != n {
				return written, io.ErrShortWrite
			}
			if fn != nil {
				fn(written, total)
			}
		}
		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
