package middleware

import (
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// Bodies below this size go out uncompressed; the header overhead is not
// worth it.
const brotliMinSize = 1024

// Brotli compresses responses for clients advertising br support.
// WebSocket upgrades are passed through untouched since buffering would
// break the handshake.
func Brotli() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		bw := &brotliResponseWriter{
			ResponseWriter: c.Writer,
			br:             brotli.NewWriterLevel(c.Writer, brotli.DefaultCompression),
		}
		c.Writer = bw

		defer func() {
			if err := bw.close(); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Next()
	}
}

// brotliResponseWriter buffers until the body crosses brotliMinSize, then
// switches the response to brotli. The encoding decision is made once.
type brotliResponseWriter struct {
	gin.ResponseWriter
	br         *brotli.Writer
	pending    []byte
	engage     sync.Once
	compressed bool
}

func (w *brotliResponseWriter) Write(data []byte) (int, error) {
	w.pending = append(w.pending, data...)
	if len(w.pending) < brotliMinSize {
		return len(data), nil
	}

	w.engage.Do(func() {
		w.compressed = true
		w.ResponseWriter.Header().Set("Content-Encoding", "br")
		w.ResponseWriter.Header().Del("Content-Length")
	})

	n, err := w.br.Write(w.pending)
	w.pending = w.pending[:0]
	return n, err
}

func (w *brotliResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// close drains anything still buffered. A body that never crossed the
// threshold is written plain.
func (w *brotliResponseWriter) close() error {
	if len(w.pending) > 0 {
		var err error
		if w.compressed {
			_, err = w.br.Write(w.pending)
		} else {
			_, err = w.ResponseWriter.Write(w.pending)
		}
		w.pending = nil
		if err != nil {
			return err
		}
	}
	if w.compressed {
		return w.br.Close()
	}
	return nil
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		if strings.TrimSpace(strings.ToLower(enc)) == "br" {
			return true
		}
	}
	return false
}
