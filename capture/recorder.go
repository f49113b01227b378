// Package capture records the frames a kansoku.Tracker flushes into a bbolt
// file so that they can be inspected or replayed later.
package capture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	log "github.com/golang/glog"
	"github.com/golang/snappy"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/edwinsyarief/kansoku"
)

var (
	// ErrNotFound is returned by Frame for a frame that was not recorded.
	ErrNotFound = errors.New("capture: frame not found")
	// ErrChecksum is returned when a stored frame does not match its checksum.
	ErrChecksum = errors.New("capture: checksum mismatch")
)

var bucketFrames = []byte("frames")

const (
	flagCompressed byte = 1 << 0

	// A stored value is [flags][xxhash64 of body, little-endian][body].
	valueHeaderSize = 1 + 8
)

// Options configures a Recorder.
type Options struct {
	// Compress snappy-compresses every frame.
	Compress bool
	// NoSync skips fsync on commit. Meant for tests and throwaway captures.
	NoSync bool
}

// Recorder is a kansoku.Sink storing every flushed frame in a bbolt
// database, keyed by frame number.
type Recorder struct {
	db   *bbolt.DB
	opts Options
	buf  bytes.Buffer
	val  []byte
}

// Open opens or creates the capture file at path.
func Open(path string, opts Options) (*Recorder, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	bopt.NoSync = opts.NoSync
	db, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("capture: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketFrames)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("capture: init %s: %w", path, err)
	}
	log.Infof("capture: recording to %s (compress=%v)", path, opts.Compress)
	return &Recorder{db: db, opts: opts}, nil
}

// Flush decodes c and stores it.
func (r *Recorder) Flush(c *kansoku.FrameChanges) error {
	return r.Put(FromChanges(c))
}

// Put stores rec under its frame number, replacing any previous record of
// that frame.
func (r *Recorder) Put(rec *FrameRecord) error {
	r.buf.Reset()
	enc := msgpack.GetEncoder()
	enc.Reset(&r.buf)
	err := enc.Encode(rec)
	msgpack.PutEncoder(enc)
	if err != nil {
		return fmt.Errorf("capture: encode frame %d: %w", rec.Frame, err)
	}

	body := r.buf.Bytes()
	var flags byte
	if r.opts.Compress {
		body = snappy.Encode(nil, body)
		flags |= flagCompressed
	}
	r.val = append(r.val[:0], flags)
	r.val = binary.LittleEndian.AppendUint64(r.val, xxhash.Sum64(body))
	r.val = append(r.val, body...)

	err = r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFrames).Put(frameKey(rec.Frame), r.val)
	})
	if err != nil {
		log.Errorf("capture: storing frame %d: %v", rec.Frame, err)
		return fmt.Errorf("capture: store frame %d: %w", rec.Frame, err)
	}
	log.V(2).Infof("capture: stored frame %d (%d bytes)", rec.Frame, len(r.val))
	return nil
}

// Frame loads the record of frame n.
func (r *Recorder) Frame(n uint64) (*FrameRecord, error) {
	var rec *FrameRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketFrames).Get(frameKey(n))
		if v == nil {
			return ErrNotFound
		}
		var err error
		rec, err = decodeValue(v)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("capture: frame %d: %w", n, err)
	}
	return rec, nil
}

// Frames calls fn for every stored frame in ascending frame order. It stops
// at the first error, which it returns.
func (r *Recorder) Frames(fn func(rec *FrameRecord) error) error {
	return r.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketFrames).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			rec, err := decodeValue(v)
			if err != nil {
				return fmt.Errorf("capture: frame %d: %w", binary.BigEndian.Uint64(k), err)
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// Len returns the number of stored frames.
func (r *Recorder) Len() (int, error) {
	var n int
	err := r.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketFrames).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

func frameKey(n uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, n)
}

// decodeValue verifies and decodes a stored value. It never retains v.
func decodeValue(v []byte) (*FrameRecord, error) {
	if len(v) < valueHeaderSize {
		return nil, fmt.Errorf("%w: value of %d bytes", ErrChecksum, len(v))
	}
	flags, sum, body := v[0], binary.LittleEndian.Uint64(v[1:valueHeaderSize]), v[valueHeaderSize:]
	if xxhash.Sum64(body) != sum {
		return nil, ErrChecksum
	}
	if flags&flagCompressed != 0 {
		var err error
		if body, err = snappy.Decode(nil, body); err != nil {
			return nil, fmt.Errorf("decompress: %w", err)
		}
	}
	rec := &FrameRecord{}
	if err := msgpack.Unmarshal(body, rec); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return rec, nil
}
