// brokenio is a wrapper around an io.ReadCloser. It allows us to set
// rates of failed read operations, so the readers of structure files
// can be tested on input that breaks part of the way through.
// Typical use: You get a file pointer, a reader from a compressed
// source or an http source. You write
// reader = brokenio.NewReader(reader) to wrap the old reader. Everything
// then functions as before, but with artificial errors.
// When we introduce an error, we return an error wrapping ErrInjected.
// When we introduce a failure on the first read, we return without an
// error. This is what one often sees on a zero length file.

package brokenio

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
)

// ErrInjected is wrapped by every error we make up.
var ErrInjected = errors.New("brokenio: injected failure")

// A Reader is modelled on the various Readers in the standard library,
// but with variables controlling the frequency of errors.
// These values are the fraction of time an error will take place,
// so a value of 0.05 means failure in 5% of the cases.
type Reader struct {
	rdrOrig      io.ReadCloser // Wrapped reader
	rnd          *rand.Rand
	logger       *log.Logger // if set, say how much data went through on Close
	probZeroFile float32     // Probability of returning a zero length file
	probFail     float32
	fracFail     float32
	failAfter    int // fail every read after this many bytes, if > 0
	nCalled      int
	nByte        int
}

// NewReader returns a new Reader - a wrapper around the old one.
// Until one of the Set functions is called, it does not break anything.
func NewReader(rIn io.ReadCloser) *Reader {
	return &Reader{
		rdrOrig:  rIn,
		rnd:      rand.New(rand.NewSource(1)),
		fracFail: 0.5,
	}
}

// SetSeed restarts the random numbers, so a failing test can be repeated.
func (r *Reader) SetSeed(seed int64) { r.rnd = rand.New(rand.NewSource(seed)) }

// SetLogger gives somewhere to report the amount of data when we close.
func (r *Reader) SetLogger(l *log.Logger) { r.logger = l }

// SetFracFail sets the amount of the bytes which will be trashed
func (r *Reader) SetFracFail(frac float32) { r.fracFail = frac }

// SetProbZeroFile sets the rate at which we simply return 0 bytes on the
// first read. It must be a value from 0 to 1. We do not check if the
// argument is valid.
func (r *Reader) SetProbZeroFile(prob float32) { r.probZeroFile = prob }

// SetProbFail set the probability of a file reading failure.
// It must be between zero and 1.
func (r *Reader) SetProbFail(prob float32) { r.probFail = prob }

// SetFailAfter makes every read fail once n bytes have been passed
// through. This is not random, so it is good for checking line numbers.
func (r *Reader) SetFailAfter(n int) { r.failAfter = n }

// trashSlice wipes out the second part of a slice.
// The amount to wipe out is given by a fraction, so 0.3
// will wipe out the second 30 % of a slice
func trashSlice(p []byte, frac float32) (int, error) {
	nkeep := int(float32(len(p)) * (1. - frac))
	if nkeep == len(p) {
		return nkeep, nil
	}
	err := fmt.Errorf("%w: wiped out last %d of %d", ErrInjected, len(p)-nkeep, len(p))
	clear(p[nkeep:])
	return nkeep, err
}

// Read wraps the original reader and sums up the amount of data that
// has gone through. It generates an error with a probability given by probFail.
// On the first call, we might return zero data to simulate a zero length file
// which is a rather common occurrence.
func (r *Reader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.nCalled == 0 && r.probZeroFile > 0 {
		if r.rnd.Float32() < r.probZeroFile {
			return 0, io.EOF
		}
	}
	if r.failAfter > 0 {
		left := r.failAfter - r.nByte
		if left <= 0 {
			return 0, fmt.Errorf("%w: after %d bytes", ErrInjected, r.nByte)
		}
		if len(p) > left {
			p = p[:left]
		}
	}
	n, err = r.rdrOrig.Read(p)
	r.nCalled++
	r.nByte += n
	if r.probFail > 0 && r.fracFail > 0 && r.rnd.Float32() < r.probFail {
		return trashSlice(p[:n], r.fracFail)
	}
	return n, err
}

// Close wraps the original Close method.
func (r *Reader) Close() error {
	if r.logger != nil {
		r.logger.Println("Closing", r.nCalled, "calls and", r.nByte, "bytes")
	}
	return r.rdrOrig.Close()
}
