// Package jsoncodec bridges encoding/json's text representation and the
// bonjson package's binary one. It lives outside the CORE package as the
// CLI's own plumbing (spec.md §1/§6.3 name the CLI itself out of scope for
// the CORE, but it still needs somewhere to live).
package jsoncodec

import (
	"encoding/json"
	"io"
	"math/big"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/kstenerud/go-bonjson"
)

// MaxInputBytes caps how much either conversion will read from its input,
// per spec.md §6.3's 5 GiB limit.
const MaxInputBytes = 5 << 30

// capReader never reads past its limit: once limit bytes have been read,
// every further Read fails with an explicit error (so an input of exactly
// limit bytes also fails), rather than silently truncating.
type capReader struct {
	r         io.Reader
	remaining int64
}

func (c *capReader) Read(p []byte) (int, error) {
	if c.remaining <= 0 {
		return 0, errors.Errorf("input exceeds %d byte cap", MaxInputBytes)
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	return n, err
}

func capped(r io.Reader) io.Reader {
	return &capReader{r: r, remaining: MaxInputBytes}
}

// JSONToBONJSON reads one JSON text value from r and writes its BONJSON
// encoding to w.
func JSONToBONJSON(r io.Reader, w io.Writer) error {
	dec := json.NewDecoder(capped(r))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return errors.Wrap(err, "decode json")
	}
	enc := bonjson.NewEncoder(w)
	if err := encodeValue(enc, v); err != nil {
		return errors.Wrap(err, "encode bonjson")
	}
	return enc.EndEncode()
}

func encodeValue(enc *bonjson.Encoder, v interface{}) error {
	switch x := v.(type) {
	case nil:
		return enc.AddNull()
	case bool:
		return enc.AddBool(x)
	case json.Number:
		return encodeNumber(enc, x)
	case string:
		return enc.AddString([]byte(x))
	case []interface{}:
		if err := enc.BeginArray(int64(len(x)), false); err != nil {
			return err
		}
		for _, elem := range x {
			if err := encodeValue(enc, elem); err != nil {
				return err
			}
		}
		return enc.EndContainer()
	case map[string]interface{}:
		if err := enc.BeginObject(int64(len(x)), false); err != nil {
			return err
		}
		for k, val := range x {
			if err := enc.AddString([]byte(k)); err != nil {
				return err
			}
			if err := encodeValue(enc, val); err != nil {
				return err
			}
		}
		return enc.EndContainer()
	default:
		return errors.Errorf("unsupported json value of type %T", v)
	}
}

// encodeNumber routes a json.Number to the narrowest BONJSON numeric form
// that represents it exactly: a 64-bit integer when possible, else a
// BigNumber whose significand fits uint64, else a best-effort float64 (a
// CLI-layer simplification; BONJSON's BigNumber significand is a fixed
// uint64, spec.md §3, so a coefficient wider than that has no exact wire
// form).
func encodeNumber(enc *bonjson.Encoder, num json.Number) error {
	s := string(num)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return enc.AddSigned(i)
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return enc.AddUnsigned(u)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.Wrapf(err, "invalid json number %q", s)
	}
	abs := new(big.Int).Abs(d.Coefficient())
	if abs.IsUint64() {
		sign := bonjson.Positive
		if d.Sign() < 0 {
			sign = bonjson.Negative
		}
		return enc.AddBigNumber(bonjson.BigNumber{
			Sign:        sign,
			Significand: abs.Uint64(),
			Exponent:    d.Exponent(),
		})
	}
	f, _ := d.Float64()
	return enc.AddFloat(f)
}

// BONJSONToJSON reads one BONJSON document from r and writes its JSON text
// encoding to w.
func BONJSONToJSON(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(capped(r))
	if err != nil {
		return errors.Wrap(err, "read input")
	}
	sink := &treeSink{}
	dec := bonjson.NewDecoder(sink)
	if _, err := dec.Decode(data); err != nil {
		return errors.Wrap(err, "decode bonjson")
	}
	out, err := json.Marshal(sink.root)
	if err != nil {
		return errors.Wrap(err, "encode json")
	}
	_, err = w.Write(out)
	return err
}

// builder accumulates the elements of one open container.
type builder interface {
	addValue(v interface{})
	value() interface{}
}

type arrayBuilder struct{ items []interface{} }

func (a *arrayBuilder) addValue(v interface{}) { a.items = append(a.items, v) }
func (a *arrayBuilder) value() interface{} {
	if a.items == nil {
		return []interface{}{}
	}
	return a.items
}

type objectBuilder struct {
	m             map[string]interface{}
	pendingKey    string
	hasPendingKey bool
}

func (o *objectBuilder) addValue(v interface{}) {
	if !o.hasPendingKey {
		o.pendingKey = v.(string)
		o.hasPendingKey = true
		return
	}
	o.m[o.pendingKey] = v
	o.hasPendingKey = false
}
func (o *objectBuilder) value() interface{} { return o.m }

// treeSink is an bonjson.EventSink that reassembles decoded events into a
// plain Go value tree suitable for encoding/json.Marshal.
type treeSink struct {
	stack  []builder
	root   interface{}
	strBuf []byte
}

func (s *treeSink) emit(v interface{}) error {
	if len(s.stack) == 0 {
		s.root = v
		return nil
	}
	s.stack[len(s.stack)-1].addValue(v)
	return nil
}

func (s *treeSink) OnNull() error              { return s.emit(nil) }
func (s *treeSink) OnBool(v bool) error        { return s.emit(v) }
func (s *treeSink) OnSigned(v int64) error     { return s.emit(v) }
func (s *treeSink) OnUnsigned(v uint64) error  { return s.emit(v) }
func (s *treeSink) OnFloat(v float64) error    { return s.emit(v) }

func (s *treeSink) OnBigNumber(v bonjson.BigNumber) error {
	sig := new(big.Int).SetUint64(v.Significand)
	if v.Sign == bonjson.Negative {
		sig.Neg(sig)
	}
	return s.emit(json.Number(decimal.NewFromBigInt(sig, v.Exponent).String()))
}

func (s *treeSink) OnString(chunk []byte, isLast bool) error {
	s.strBuf = append(s.strBuf, chunk...)
	if !isLast {
		return nil
	}
	str := string(s.strBuf)
	s.strBuf = nil
	return s.emit(str)
}

func (s *treeSink) OnBeginArray(countHint int64) error {
	b := &arrayBuilder{}
	if countHint > 0 {
		b.items = make([]interface{}, 0, countHint)
	}
	s.stack = append(s.stack, b)
	return nil
}

func (s *treeSink) OnBeginObject(countHint int64) error {
	b := &objectBuilder{m: make(map[string]interface{})}
	s.stack = append(s.stack, b)
	return nil
}

func (s *treeSink) OnEndContainer() error {
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return s.emit(top.value())
}

func (s *treeSink) OnEndData() error { return nil }
