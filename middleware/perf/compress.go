package perf

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

const DefaultMinCompressSize = 1000

// ErrNotCompressible indica que a resposta não atende às condições de compressão.
var ErrNotCompressible = errors.New("response not compressible")

type Compressor struct {
	// MinSize: só comprime corpos estritamente maiores.
	MinSize int
	// Level do gzip; 0 usa gzip.DefaultCompression.
	Level int
}

// Compress comprime body quando status é 200, o cliente aceita gzip, o corpo
// passa de MinSize e ainda não tem Content-Encoding. Em caso de sucesso ajusta
// Content-Encoding, Content-Length e Vary em h.
func (c Compressor) Compress(acceptEncoding string, status int, h http.Header, body []byte) ([]byte, error) {
	if status != http.StatusOK || !acceptsGzip(acceptEncoding) || len(body) <= c.MinSize || h.Get("Content-Encoding") != "" {
		return nil, ErrNotCompressible
	}

	level := c.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := zw.Write(body); err != nil {
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}

	h.Set("Content-Encoding", "gzip")
	h.Set("Content-Length", strconv.Itoa(buf.Len()))
	h.Add("Vary", "Accept-Encoding")
	return buf.Bytes(), nil
}

func acceptsGzip(v string) bool {
	for _, part := range strings.Split(v, ",") {
		enc, params, _ := strings.Cut(part, ";")
		if !strings.EqualFold(strings.TrimSpace(enc), "gzip") {
			continue
		}
		// gzip;q=0 recusa explicitamente
		if q, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if f, err := strconv.ParseFloat(q, 64); err == nil && f == 0 {
				return false
			}
		}
		return true
	}
	return false
}
