package cbor

// Raw holds one pre-encoded data item. It round-trips through WriteDataItem
// and PopNextRaw without interpretation, so callers can carry opaque
// payloads through a larger encoding.
type Raw []byte

// MarshalCBOR implements Marshaler. An empty Raw encodes as null.
func (r Raw) MarshalCBOR(b []byte) ([]byte, error) {
	if len(r) == 0 {
		return AppendNil(b), nil
	}
	return append(b, r...), nil
}

// UnmarshalCBOR implements Unmarshaler, capturing the next complete item.
func (r *Raw) UnmarshalCBOR(b []byte) ([]byte, error) {
	rest, err := Skip(b)
	if err != nil {
		return b, err
	}
	n := len(b) - len(rest)
	if IsNil(b[:n]) {
		n = 0
	}
	if cap(*r) < n {
		*r = make(Raw, n)
	}
	*r = (*r)[:n]
	copy(*r, b[:n])
	return rest, nil
}

// PopNextRaw pops the next complete data item uninterpreted, aliasing the
// source buffer.
func (d *Decoder) PopNextRaw() (Raw, error) {
	rest, err := Skip(d.buf)
	if err != nil {
		return nil, err
	}
	raw := Raw(d.buf[:len(d.buf)-len(rest)])
	d.buf = rest
	return raw, nil
}

// ForEachSequenceBytes calls onItem once per data item in the CBOR sequence
// b. Each item slice references b and holds exactly one complete item.
func ForEachSequenceBytes(b []byte, onItem func(item []byte) error) error {
	p := b
	for len(p) > 0 {
		rest, err := Skip(p)
		if err != nil {
			return err
		}
		if err := onItem(p[: len(p)-len(rest) : len(p)-len(rest)]); err != nil {
			return err
		}
		p = rest
	}
	return nil
}

// SplitSequenceBytes splits a CBOR sequence into per-item slices referencing
// the original buffer.
func SplitSequenceBytes(b []byte) (out [][]byte, err error) {
	err = ForEachSequenceBytes(b, func(it []byte) error {
		out = append(out, it)
		return nil
	})
	return out, err
}

// AppendSequence appends pre-encoded items to b. Each item must be one
// complete data item.
func AppendSequence(b []byte, items ...[]byte) []byte {
	for _, it := range items {
		b = append(b, it...)
	}
	return b
}
