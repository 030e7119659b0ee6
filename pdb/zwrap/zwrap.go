// Package zwrap takes a file pointer and optionally wraps it so upon
// calling Close, the decompressor will be closed, followed by the
// underlying file.
// I benchmarked with and without buffering in Wrap(). I could not measure
// any difference.

package zwrap

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Reader is what we return. If zrdr is nil, the data was not compressed
// and we read straight from src.
type Reader struct {
	fp   io.Closer // what we close at the end
	src  io.Reader // what the decompressor, if any, reads from
	zrdr *gzip.Reader
}

// Close closes the decompressor, then the underlying backing readCloser.
// It should work if the source is a file or an http stream.
func (fc *Reader) Close() error {
	var zerr error
	if fc.zrdr != nil {
		zerr = fc.zrdr.Close()
	}
	return errors.Join(zerr, fc.fp.Close())
}

// Read makes sure we read from the compressed stream and
// not the underlying file stream.
func (fc *Reader) Read(p []byte) (int, error) {
	if fc.zrdr != nil {
		return fc.zrdr.Read(p)
	}
	return fc.src.Read(p)
}

// Compressed says if we are decompressing.
func (fc *Reader) Compressed() bool { return fc.zrdr != nil }

// Wrap takes a source like a file pointer or http stream and wraps it
// so the correct Close and Read will be called. Although we use the
// name fp, it should be happy if it is fed an http stream.
func Wrap(fp io.ReadCloser) (*Reader, error) {
	zrdr, err := gzip.NewReader(fp) // No need to check error.
	return &Reader{fp: fp, src: fp, zrdr: zrdr}, err
}

// WrapMaybe will decide if the underlying stream is compressed
// and wrap the file pointer if necessary.
// You do lose something. If you pass in something which can seek,
// you get back a ReadCloser which cannot seek. This is the price
// one pays for reading from a compressed reader.
func WrapMaybe(fpIn io.ReadSeekCloser) (*Reader, error) {
	if out, err := Wrap(fpIn); err == nil {
		return out, nil // It was compressed. Return compressed reader.
	}
	_, err := fpIn.Seek(0, io.SeekStart)
	return &Reader{fp: fpIn, src: fpIn}, err
}

// WrapReader is WrapMaybe for something that cannot seek, like an http
// body. We peek at the first two bytes to see if it is gzipped.
func WrapReader(rc io.ReadCloser) (*Reader, error) {
	br := bufio.NewReader(rc)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if !bytes.Equal(head, gzipMagic) {
		return &Reader{fp: rc, src: br}, nil
	}
	zrdr, err := gzip.NewReader(br)
	if err != nil {
		return nil, err
	}
	return &Reader{fp: rc, src: br, zrdr: zrdr}, nil
}
