package bonjson

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, data []byte) []string {
	t.Helper()
	sink := &captureSink{}
	_, err := NewDecoder(sink).Decode(data)
	require.NoError(t, err)
	return sink.events
}

func TestEncodeSmallIntCanonicalForm(t *testing.T) {
	for _, v := range []int64{-100, -1, 0, 1, 100, 101, -101} {
		v := v
		t.Run(fmt.Sprintf("%d", v), func(t *testing.T) {
			var buf byteBuf
			require.NoError(t, NewEncoder(&buf).AddSigned(v))
			if smallIntInRange(v) {
				assert.Len(t, buf.data, 1)
				assert.Equal(t, v, decodeSmallInt(buf.data[0]))
			} else {
				assert.Greater(t, len(buf.data), 1)
			}
		})
	}
}

func TestEncodeUnsignedBelowInt64RangeReroutesToSigned(t *testing.T) {
	var bufSigned, bufUnsigned byteBuf
	require.NoError(t, NewEncoder(&bufSigned).AddSigned(42))
	require.NoError(t, NewEncoder(&bufUnsigned).AddUnsigned(42))
	assert.Equal(t, bufSigned.data, bufUnsigned.data)
}

func TestEncodeFloatIntegralReroutesToInteger(t *testing.T) {
	var bufFloat, bufInt byteBuf
	require.NoError(t, NewEncoder(&bufFloat).AddFloat(7))
	require.NoError(t, NewEncoder(&bufInt).AddSigned(7))
	assert.Equal(t, bufInt.data, bufFloat.data)
}

func TestEncodeFloatRejectsNaNAndInf(t *testing.T) {
	for _, test := range []struct {
		name string
		v    float64
	}{
		{"nan", math.NaN()},
		{"+inf", math.Inf(1)},
		{"-inf", math.Inf(-1)},
	} {
		test := test
		t.Run(test.name, func(t *testing.T) {
			var buf byteBuf
			err := NewEncoder(&buf).AddFloat(test.v)
			require.Error(t, err)
			assert.Equal(t, InvalidFloat, kindOf(t, err))
		})
	}
}

func TestEncodeBigNumberReducesWhenPossible(t *testing.T) {
	var bufBig, bufInt byteBuf
	require.NoError(t, NewEncoder(&bufBig).AddBigNumber(BigNumber{Sign: Positive, Significand: 5, Exponent: 2}))
	require.NoError(t, NewEncoder(&bufInt).AddSigned(500))
	assert.Equal(t, bufInt.data, bufBig.data)
}

func TestEncodeBigNumberGenuine(t *testing.T) {
	bn := BigNumber{Sign: Positive, Significand: 123456789, Exponent: -300}
	var buf byteBuf
	require.NoError(t, NewEncoder(&buf).AddBigNumber(bn))
	assert.Equal(t, []string{"bignum:0:123456789:-300", "end-data"}, decodeAll(t, buf.data))
}

func TestEncodeObjectRejectsNonStringKey(t *testing.T) {
	var buf byteBuf
	enc := NewEncoder(&buf)
	require.NoError(t, enc.BeginObject(1, false))
	err := enc.AddSigned(1)
	require.Error(t, err)
	assert.Equal(t, ExpectedString, kindOf(t, err))
}

func TestEncodeTooManyElements(t *testing.T) {
	var buf byteBuf
	enc := NewEncoder(&buf)
	require.NoError(t, enc.BeginArray(1, false))
	require.NoError(t, enc.AddSigned(1))
	err := enc.AddSigned(2)
	require.Error(t, err)
	assert.Equal(t, TooManyElements, kindOf(t, err))
}

func TestEncodeTooFewElements(t *testing.T) {
	var buf byteBuf
	enc := NewEncoder(&buf)
	require.NoError(t, enc.BeginArray(2, false))
	require.NoError(t, enc.AddSigned(1))
	err := enc.EndContainer()
	require.Error(t, err)
	assert.Equal(t, TooFewElements, kindOf(t, err))
}

func TestEncodeEndEncodeRequiresRootValue(t *testing.T) {
	var buf byteBuf
	enc := NewEncoder(&buf)
	err := enc.EndEncode()
	require.Error(t, err)
	assert.Equal(t, TooFewElements, kindOf(t, err))
}

func TestEncodeEndEncodeRequiresClosedContainers(t *testing.T) {
	var buf byteBuf
	enc := NewEncoder(&buf)
	require.NoError(t, enc.BeginArray(1, true))
	require.NoError(t, enc.AddSigned(1))
	err := enc.EndEncode()
	require.Error(t, err)
	assert.Equal(t, TooFewElements, kindOf(t, err))
}

func TestEncodePoisonedAfterError(t *testing.T) {
	var buf byteBuf
	enc := NewEncoder(&buf)
	require.NoError(t, enc.BeginArray(1, false))
	require.NoError(t, enc.AddSigned(1))
	require.Error(t, enc.AddSigned(2)) // poisons enc (TooManyElements)

	err := enc.AddNull()
	require.Error(t, err)
	assert.Equal(t, MisuseAfterError, kindOf(t, err))
}

func TestEncodeChunkedStringWiresThroughDecoder(t *testing.T) {
	var buf byteBuf
	enc := NewEncoder(&buf)
	require.NoError(t, enc.ChunkString([]byte("foo"), false))
	require.NoError(t, enc.ChunkString([]byte("bar"), true))
	require.NoError(t, enc.EndEncode())
	assert.Equal(t, []string{`string:"foo":false`, `string:"bar":true`, "end-data"}, decodeAll(t, buf.data))
}

func TestEncodeChunkedContainerWritesEndMarker(t *testing.T) {
	var buf byteBuf
	enc := NewEncoder(&buf)
	require.NoError(t, enc.BeginArray(0, true))
	require.NoError(t, enc.AddSigned(1))
	require.NoError(t, enc.EndContainer())
	require.NoError(t, enc.EndEncode())
	assert.Contains(t, buf.data, byte(tagEndContainer))
}

func TestEncodeCountedContainerWritesNoEndMarker(t *testing.T) {
	var buf byteBuf
	enc := NewEncoder(&buf)
	require.NoError(t, enc.BeginArray(1, false))
	require.NoError(t, enc.AddSigned(1))
	require.NoError(t, enc.EndContainer())
	require.NoError(t, enc.EndEncode())
	assert.NotContains(t, buf.data, byte(tagEndContainer))
}

func TestEncodeAddEncodedDocumentSplicesValidFragment(t *testing.T) {
	var fragment byteBuf
	fragEnc := NewEncoder(&fragment)
	require.NoError(t, fragEnc.AddSigned(99))
	require.NoError(t, fragEnc.EndEncode())

	var outer byteBuf
	enc := NewEncoder(&outer)
	require.NoError(t, enc.BeginArray(1, false))
	require.NoError(t, enc.AddEncodedDocument(fragment.data))
	require.NoError(t, enc.EndContainer())
	require.NoError(t, enc.EndEncode())
	assert.Equal(t, []string{"arr-begin:1", "signed:99", "end", "end-data"}, decodeAll(t, outer.data))
}

func TestEncodeAddEncodedDocumentRejectsGarbage(t *testing.T) {
	var buf byteBuf
	enc := NewEncoder(&buf)
	err := enc.AddEncodedDocument([]byte{0xE5})
	require.Error(t, err)
	assert.Equal(t, UnbalancedContainer, kindOf(t, err))
}

func TestEncodeAddEncodedDocumentRejectsTrailingGarbage(t *testing.T) {
	frag := []byte{encodeSmallInt(1), encodeSmallInt(2)}
	var buf byteBuf
	enc := NewEncoder(&buf)
	err := enc.AddEncodedDocument(frag)
	require.Error(t, err)
	assert.Equal(t, UnbalancedContainer, kindOf(t, err))
}

func TestEncodeTerminateDocument(t *testing.T) {
	var buf byteBuf
	enc := NewEncoder(&buf)
	require.NoError(t, enc.AddNull())
	require.NoError(t, enc.EndEncode())
	require.NoError(t, enc.TerminateDocument())
	assert.Equal(t, byte(tagDocTerminator), buf.data[len(buf.data)-1])
}
