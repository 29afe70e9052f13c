package cbor

// ValidateWellFormedBytes checks that the next data item in b is well-formed
// per RFC 8949 and returns the bytes after it. Beyond structure it checks
// UTF-8 validity of text strings, that indefinite string fragments are
// definite strings of the same major type, and that the reserved
// additional-info values 28-30 do not appear.
func ValidateWellFormedBytes(b []byte) (rest []byte, err error) {
	return validateItem(b, 0)
}

// ValidateDocument checks every item in b until the input is exhausted.
func ValidateDocument(b []byte) error {
	var err error
	for len(b) > 0 {
		if b, err = validateItem(b, 0); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(b []byte, depth int) ([]byte, error) {
	if depth > maxNestingDepth {
		return b, ErrMaxDepthExceeded
	}
	t, err := PeekTypeBytes(b)
	if err != nil {
		return b, err
	}

	switch t {
	case UnsignedInt:
		_, o, err := readUintCore(b, majorTypeUint)
		return pass(b, o, err)

	case NegativeInt:
		_, o, err := readUintCore(b, majorTypeNegInt)
		return pass(b, o, err)

	case TagType:
		_, o, err := ReadTagBytes(b)
		if err != nil {
			return b, err
		}
		return validateItem(o, depth+1)

	case Bytes:
		sz, o, err := readUintCore(b, majorTypeBytes)
		if err != nil {
			return b, err
		}
		if uint64(len(o)) < sz {
			return b, ErrShortBytes
		}
		return o[sz:], nil

	case IndefBytes:
		p := b[1:]
		for {
			rest, done, err := ReadBreakBytes(p)
			if err != nil {
				return b, err
			}
			if done {
				return rest, nil
			}
			sz, o, err := readUintCore(p, majorTypeBytes)
			if err != nil {
				return b, err
			}
			if uint64(len(o)) < sz {
				return b, ErrShortBytes
			}
			p = o[sz:]
		}

	case Text:
		s, o, err := ReadStringZC(b)
		if err != nil {
			return b, err
		}
		if !isUTF8Valid(s) {
			return b, ErrInvalidUTF8
		}
		return o, nil

	case IndefText:
		p := b[1:]
		for {
			rest, done, err := ReadBreakBytes(p)
			if err != nil {
				return b, err
			}
			if done {
				return rest, nil
			}
			chunk, o, err := ReadStringZC(p)
			if err != nil {
				return b, err
			}
			if !isUTF8Valid(chunk) {
				return b, ErrInvalidUTF8
			}
			p = o
		}

	case ArrayStart, IndefArray:
		sz, indef, p, err := ReadArrayStartBytes(b)
		if err != nil {
			return b, err
		}
		if indef {
			for {
				rest, done, err := ReadBreakBytes(p)
				if err != nil {
					return b, err
				}
				if done {
					return rest, nil
				}
				if p, err = validateItem(p, depth+1); err != nil {
					return b, err
				}
			}
		}
		for i := uint64(0); i < sz; i++ {
			if p, err = validateItem(p, depth+1); err != nil {
				return b, err
			}
		}
		return p, nil

	case MapStart, IndefMap:
		sz, indef, p, err := ReadMapStartBytes(b)
		if err != nil {
			return b, err
		}
		if indef {
			for {
				rest, done, err := ReadBreakBytes(p)
				if err != nil {
					return b, err
				}
				if done {
					return rest, nil
				}
				if p, err = validateItem(p, depth+1); err != nil {
					return b, err
				}
				if p, err = validateItem(p, depth+1); err != nil {
					return b, err
				}
			}
		}
		for i := uint64(0); i < sz; i++ {
			if p, err = validateItem(p, depth+1); err != nil {
				return b, err
			}
			if p, err = validateItem(p, depth+1); err != nil {
				return b, err
			}
		}
		return p, nil

	case Bool, Null, Undef:
		return b[1:], nil

	case Float:
		n := 0
		switch getAddInfo(b[0]) {
		case simpleFloat16:
			n = 3
		case simpleFloat32:
			n = 5
		case simpleFloat64:
			n = 9
		}
		if len(b) < n {
			return b, ErrShortBytes
		}
		return b[n:], nil

	case Break:
		return b, ErrUnmatchedBreak

	default:
		add := getAddInfo(b[0])
		if add < simpleFalse {
			// Unassigned simple values are still well-formed.
			return b[1:], nil
		}
		if add == addInfoUint8 {
			if len(b) < 2 {
				return b, ErrShortBytes
			}
			return b[2:], nil
		}
		return b, InvalidAdditionalInfoError{Major: getMajorType(b[0]), Info: add}
	}
}

func pass(b, o []byte, err error) ([]byte, error) {
	if err != nil {
		return b, err
	}
	return o, nil
}
