package cbor

// Worst-case encoded sizes for common items. For variable-length items such
// as strings and byte slices, the total encoded size is the corresponding
// prefix size plus the length of the value.
const (
	Int64Size        = 9
	Uint64Size       = Int64Size
	Float64Size      = 9
	TagHeadSize      = 9
	TimeSize         = TagHeadSize + Float64Size
	BoolSize         = 1
	NilSize          = 1
	MapHeaderSize    = 9
	ArrayHeaderSize  = 9
	BytesPrefixSize  = 9
	StringPrefixSize = 9
)
