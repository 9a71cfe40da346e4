package bonjson

// Type identifies the abstract kind of a decoded or to-be-encoded BONJSON
// value, per the data model in spec.md §3.
type Type int

// The nine value kinds BONJSON's data model distinguishes. Integer values
// are split into Signed and Unsigned rather than collapsed into one kind,
// since the wire format itself makes that distinction (spec.md §3).
const (
	TypeNull Type = iota
	TypeBoolean
	TypeSignedInt
	TypeUnsignedInt
	TypeFloat
	TypeBigNumber
	TypeString
	TypeArray
	TypeObject
	numTypes
)

var typeStrings = [numTypes]string{
	"null", "boolean", "signed-int", "unsigned-int",
	"float", "big-number", "string", "array", "object",
}

// String returns a short diagnostic name for the type.
func (t Type) String() string {
	if t < 0 || t >= numTypes {
		return "<unknown>"
	}
	return typeStrings[t]
}

// Sign is the sign of a BigNumber.
type Sign int8

const (
	Positive Sign = 0
	Negative Sign = 1
)

// BigNumber is an arbitrary-magnitude decimal value: sign * significand *
// 10^exponent. Significand is the unsigned digit magnitude; sign is
// carried separately. A significand of zero means the value zero whatever
// the sign or exponent (spec.md §3's canonical-zero rule reduces it to
// SignedInt(0) before it ever reaches the wire, see reduceBigNumber in
// numeric.go).
type BigNumber struct {
	Sign        Sign
	Significand uint64
	Exponent    int32
}
