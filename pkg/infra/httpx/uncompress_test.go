package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipCompress(data []byte) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write(data)
	_ = gz.Close()
	return buf.Bytes()
}

func brCompress(data []byte) []byte {
	var buf bytes.Buffer
	br := brotli.NewWriter(&buf)
	_, _ = br.Write(data)
	_ = br.Close()
	return buf.Bytes()
}

func zstdCompress(data []byte) []byte {
	var buf bytes.Buffer
	zw, _ := zstd.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}

func zlibCompress(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}

func rawDeflateCompress(data []byte) []byte {
	var buf bytes.Buffer
	fw, _ := flate.NewWriter(&buf, flate.DefaultCompression)
	_, _ = fw.Write(data)
	_ = fw.Close()
	return buf.Bytes()
}

func TestDecodeBody(t *testing.T) {
	payload := []byte(`[[{"label":"toxic","score":0.91}]]`)

	tests := []struct {
		name        string
		encoding    string
		body        []byte
		wantChanged bool
	}{
		{name: "no encoding", encoding: "", body: payload, wantChanged: false},
		{name: "identity", encoding: "identity", body: payload, wantChanged: false},
		{name: "gzip", encoding: "gzip", body: gzipCompress(payload), wantChanged: true},
		{name: "x-gzip uppercase", encoding: "X-GZIP", body: gzipCompress(payload), wantChanged: true},
		{name: "brotli", encoding: "br", body: brCompress(payload), wantChanged: true},
		{name: "zstd", encoding: "zstd", body: zstdCompress(payload), wantChanged: true},
		{name: "zlib deflate", encoding: "deflate", body: zlibCompress(payload), wantChanged: true},
		{name: "raw deflate", encoding: "deflate", body: rawDeflateCompress(payload), wantChanged: true},
		{name: "chain applied last first", encoding: "gzip, br", body: brCompress(gzipCompress(payload)), wantChanged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, changed, err := DecodeBody(tt.encoding, tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, payload, out)
		})
	}
}

func TestDecodeBody_Errors(t *testing.T) {
	_, _, err := DecodeBody("snappy", []byte("x"))
	assert.ErrorContains(t, err, "unsupported content-encoding")

	_, _, err = DecodeBody("gzip", []byte("not gzip"))
	assert.ErrorContains(t, err, "failed to decode gzip body")
}
