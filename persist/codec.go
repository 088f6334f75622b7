package persist

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
)

// Codec names the compression of the body.
type Codec string

const (
	CodecNone   Codec = "none"
	CodecGzip   Codec = "gzip"
	CodecSnappy Codec = "snappy"
)

func (c Codec) valid() bool {
	switch c {
	case CodecNone, CodecGzip, CodecSnappy:
		return true
	}
	return false
}

func (c Codec) encode(body []byte) ([]byte, error) {
	switch c {
	case CodecNone:
		return body, nil
	case CodecSnappy:
		return snappy.Encode(nil, body), nil
	case CodecGzip:
		buf := bytes.NewBuffer(nil)
		w := gzip.NewWriter(buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: unknown codec %q", ErrBadFormat, string(c))
}

func (c Codec) decode(stored []byte) ([]byte, error) {
	switch c {
	case CodecNone:
		return stored, nil
	case CodecSnappy:
		return snappy.Decode(nil, stored)
	case CodecGzip:
		r, err := gzip.NewReader(bytes.NewReader(stored))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	}
	return nil, fmt.Errorf("%w: unknown codec %q", ErrBadFormat, string(c))
}
