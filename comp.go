package wfs

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// CompressionID names a registered snapshot codec, generalizing the
// teacher's closed SquashComp enum (GZip/LZMA/LZO/XZ/LZ4/ZSTD, one of which
// a squashfs image is permanently built with) into an open registry any
// build can add to via an init() in a build-tag-gated file.
type CompressionID uint16

const (
	GZip CompressionID = 1
	XZ   CompressionID = 4
	ZSTD CompressionID = 6
)

func (c CompressionID) String() string {
	switch c {
	case GZip:
		return "GZip"
	case XZ:
		return "XZ"
	case ZSTD:
		return "ZSTD"
	}
	return fmt.Sprintf("CompressionID(%d)", c)
}

// CompHandler pairs a compressor and decompressor for one CompressionID.
type CompHandler struct {
	Compress   func(buf []byte) ([]byte, error)
	Decompress func(r io.Reader) (io.ReadCloser, error)
}

var compRegistry = map[CompressionID]*CompHandler{}

// RegisterCompHandler installs a codec, called from init() in the
// untagged gzip implementation below and in the build-tag-gated xz/zstd
// files.
func RegisterCompHandler(id CompressionID, h *CompHandler) {
	compRegistry[id] = h
}

// LookupCompHandler returns the registered handler for id, or an error if
// the running binary was not built with that codec's build tag.
func LookupCompHandler(id CompressionID) (*CompHandler, error) {
	h, ok := compRegistry[id]
	if !ok {
		return nil, fmt.Errorf("wfs: compression %s not registered in this build", id)
	}
	return h, nil
}

func gzipCompress(buf []byte) ([]byte, error) {
	var out bytes.Buffer
	w := gzip.NewWriter(&out)
	if _, err := w.Write(buf); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func init() {
	RegisterCompHandler(GZip, &CompHandler{
		Compress: gzipCompress,
		Decompress: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
	})
}
