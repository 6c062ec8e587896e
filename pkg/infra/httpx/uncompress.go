package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// MaxDecodedBodySize caps how far a compressed embed page may expand.
const MaxDecodedBodySize = 32 * 1024 * 1024

var ErrBodyTooLarge = errors.New("decoded body exceeds size limit")

type decoder func(body []byte) (io.ReadCloser, error)

var decoders = map[string]decoder{
	"br": func(body []byte) (io.ReadCloser, error) {
		return io.NopCloser(brotli.NewReader(bytes.NewReader(body))), nil
	},
	"gzip": func(body []byte) (io.ReadCloser, error) {
		return gzip.NewReader(bytes.NewReader(body))
	},
	"x-gzip": func(body []byte) (io.ReadCloser, error) {
		return gzip.NewReader(bytes.NewReader(body))
	},
	"zstd": func(body []byte) (io.ReadCloser, error) {
		dec, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	},
	"deflate": func(body []byte) (io.ReadCloser, error) {
		// RFC 9110 says zlib-wrapped, but raw DEFLATE is common in the wild.
		if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			return zr, nil
		}
		return flate.NewReader(bytes.NewReader(body)), nil
	},
}

// DecodeChain undoes a Content-Encoding header value such as "gzip, br".
// Codings are removed in reverse order of application. It reports whether
// the body changed.
func DecodeChain(contentEncoding string, body []byte) ([]byte, bool, error) {
	if strings.TrimSpace(contentEncoding) == "" {
		return body, false, nil
	}
	codings := strings.Split(contentEncoding, ",")
	changed := false
	for i := len(codings) - 1; i >= 0; i-- {
		name := strings.ToLower(strings.TrimSpace(codings[i]))
		switch name {
		case "", "identity", "compress":
			continue
		}
		dec, ok := decoders[name]
		if !ok {
			return nil, false, fmt.Errorf("unsupported content-encoding: %q", name)
		}
		out, err := decodeOne(dec, body)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", name, err)
		}
		body = out
		changed = true
	}
	return body, changed, nil
}

func decodeOne(dec decoder, body []byte) ([]byte, error) {
	r, err := dec(body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	out, err := io.ReadAll(io.LimitReader(r, MaxDecodedBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > MaxDecodedBodySize {
		return nil, ErrBodyTooLarge
	}
	return out, nil
}
