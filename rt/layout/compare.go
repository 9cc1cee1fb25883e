package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMismatch is matched by every *MismatchError.
var ErrMismatch = errors.New("layout mismatch")

// MismatchError lists how two targets disagree on one record.
type MismatchError struct {
	Record string
	A, B   Target
	Diffs  []string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s %s/%s: %s", ErrMismatch, e.Record, e.A, e.B, strings.Join(e.Diffs, "; "))
}

func (e *MismatchError) Unwrap() error { return ErrMismatch }

// Compare reports whether a device reading memory laid out as a would find
// every field where b expects it. Offsets and the array stride must match
// exactly. Field widths may differ (u8 on the host, u32 in WGSL) as long as
// neither width reaches into the next field.
func Compare(a, b Layout) error {
	var diffs []string
	if a.Stride != b.Stride {
		diffs = append(diffs, fmt.Sprintf("stride %d != %d", a.Stride, b.Stride))
	}
	if len(a.Fields) != len(b.Fields) {
		diffs = append(diffs, fmt.Sprintf("field count %d != %d", len(a.Fields), len(b.Fields)))
	}
	n := min(len(a.Fields), len(b.Fields))
	for i := 0; i < n; i++ {
		fa, fb := a.Fields[i], b.Fields[i]
		if fa.Name != fb.Name {
			diffs = append(diffs, fmt.Sprintf("field %d named %q != %q", i, fa.Name, fb.Name))
			continue
		}
		if fa.Offset != fb.Offset {
			diffs = append(diffs, fmt.Sprintf("%s offset %d != %d", fa.Name, fa.Offset, fb.Offset))
			continue
		}
		limit := min(a.Stride, b.Stride)
		if i+1 < n {
			limit = min(a.Fields[i+1].Offset, b.Fields[i+1].Offset)
		}
		if w := max(fa.Size, fb.Size); fa.Offset+w > limit {
			diffs = append(diffs, fmt.Sprintf("%s width %d at offset %d overlaps byte %d", fa.Name, w, fa.Offset, limit))
		}
	}
	if len(diffs) == 0 {
		return nil
	}
	return &MismatchError{Record: a.Name, A: a.Target, B: b.Target, Diffs: diffs}
}

// Verify checks the host layout of every record against WGSL and MSL.
func Verify(records ...any) error {
	var errs []error
	for _, r := range records {
		host, err := HostLayout(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, target := range []Target{WGSL, MSL} {
			dev, err := DeviceLayout(r, target)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if err := Compare(host, dev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
