package particles

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gekko3d/particles/rt/core"
	"github.com/gekko3d/particles/rt/layout"
)

// ErrLayoutMismatch marks data whose record layout disagrees with this
// build's. It matches layout mismatches reported by rt/layout too.
var ErrLayoutMismatch = layout.ErrMismatch

var ErrBadSnapshot = errors.New("not a particle snapshot")

/*
Snapshot files hold one record buffer:

	|-- magic --||-- header --||-- count x stride bytes --|

The header is little endian. EndianFlag records the byte order of the
payload: -1 for little endian, 0 for big endian. The payload is the raw
record layout, so a file is only readable by a build whose stride and byte
order match.
*/
const snapshotMagic = "PRTL"

const (
	snapshotVersion    = 1
	maxSnapshotRecords = 1 << 26
)

const (
	recordParticle uint32 = 1
	recordVertex   uint32 = 2
)

type snapshotHeader struct {
	Version    uint32
	EndianFlag int32
	Record     uint32
	Stride     uint32
	Count      uint64
}

func nativeEndianFlag() int32 {
	var probe [2]byte
	binary.NativeEndian.PutUint16(probe[:], 1)
	if probe[0] == 1 {
		return -1
	}
	return 0
}

func recordTag[T core.Record]() uint32 {
	var zero T
	switch any(zero).(type) {
	case core.Particle:
		return recordParticle
	default:
		return recordVertex
	}
}

// WriteSnapshot writes buf with its layout header.
func WriteSnapshot[T core.Record](w io.Writer, buf *core.Buffer[T]) error {
	if _, err := io.WriteString(w, snapshotMagic); err != nil {
		return err
	}
	hd := snapshotHeader{
		Version:    snapshotVersion,
		EndianFlag: nativeEndianFlag(),
		Record:     recordTag[T](),
		Stride:     uint32(buf.Stride()),
		Count:      uint64(buf.Len()),
	}
	if err := binary.Write(w, binary.LittleEndian, &hd); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	if _, err := w.Write(buf.Encode()); err != nil {
		return fmt.Errorf("failed to write snapshot payload: %w", err)
	}
	return nil
}

// ReadSnapshot reads a buffer written by WriteSnapshot. A stride or byte
// order that differs from this build's is ErrLayoutMismatch.
func ReadSnapshot[T core.Record](r io.Reader) (*core.Buffer[T], error) {
	magic := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if string(magic) != snapshotMagic {
		return nil, ErrBadSnapshot
	}
	var hd snapshotHeader
	if err := binary.Read(r, binary.LittleEndian, &hd); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrBadSnapshot, err)
	}
	if hd.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadSnapshot, hd.Version)
	}
	if want := recordTag[T](); hd.Record != want {
		return nil, fmt.Errorf("%w: record tag %d, want %d", ErrBadSnapshot, hd.Record, want)
	}

	if stride := core.NewBuffer[T](0).Stride(); int(hd.Stride) != stride {
		return nil, fmt.Errorf("%w: snapshot stride %d, build stride %d", ErrLayoutMismatch, hd.Stride, stride)
	}
	if hd.EndianFlag != nativeEndianFlag() {
		return nil, fmt.Errorf("%w: snapshot byte order flag %d", ErrLayoutMismatch, hd.EndianFlag)
	}
	if hd.Count > maxSnapshotRecords {
		return nil, fmt.Errorf("%w: %d records", ErrBadSnapshot, hd.Count)
	}

	// Memory grows with the bytes actually present, not the header's count.
	size := int64(hd.Count) * int64(hd.Stride)
	raw, err := io.ReadAll(io.LimitReader(r, size))
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrBadSnapshot, err)
	}
	if int64(len(raw)) != size {
		return nil, fmt.Errorf("%w: payload is %d bytes, header promises %d", ErrBadSnapshot, len(raw), size)
	}
	buf := core.NewBuffer[T](int(hd.Count))
	if err := buf.Load(raw); err != nil {
		return nil, err
	}
	return buf, nil
}
