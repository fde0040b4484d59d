package httpx

import (
	"bytes"
	"net/http"
)

// Recorder é um http.ResponseWriter que guarda status, headers e corpo em memória.
// Nada chega ao cliente até FlushTo.
type Recorder struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func NewRecorder() *Recorder {
	return &Recorder{header: make(http.Header), status: http.StatusOK}
}

func (r *Recorder) Header() http.Header { return r.header }

func (r *Recorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = status
}

func (r *Recorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.body.Write(p)
}

func (r *Recorder) Status() int { return r.status }

func (r *Recorder) Body() []byte { return r.body.Bytes() }

// SetBody substitui o corpo (ex.: após compressão).
func (r *Recorder) SetBody(b []byte) {
	r.body.Reset()
	_, _ = r.body.Write(b)
}

// Reset descarta tudo o que foi escrito; usado ao converter um panic em 500.
func (r *Recorder) Reset() {
	r.header = make(http.Header)
	r.status = http.StatusOK
	r.wroteHeader = false
	r.body.Reset()
}

// FlushTo copia headers, status e corpo para w.
func (r *Recorder) FlushTo(w http.ResponseWriter) error {
	dst := w.Header()
	for k, v := range r.header {
		dst[k] = append([]string(nil), v...)
	}
	w.WriteHeader(r.status)
	if r.body.Len() == 0 {
		return nil
	}
	_, err := w.Write(r.body.Bytes())
	return err
}
