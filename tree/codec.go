package tree

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FormatError represents an error found when reading model data
type FormatError string

// ErrMalformedData is matched by the errors returned when model data
// does not follow the expected layout.
const ErrMalformedData = FormatError("malformed model data")

func (fe FormatError) Error() string {
	return string(fe)
}

const maxTokenSize = 1 << 20

// maxCount bounds the number of values a field may hold.
const maxCount = 1 << 20

/*
Encoder writes model data as lines of whitespace separated tokens, each
line made up of a field name followed by a colon and the field values.
The first write error is retained and returned by Err, and any later
writes are skipped.
*/
type Encoder struct {
	w   *bufio.Writer
	err error
}

// NewEncoder returns an Encoder writing on the given io.Writer.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

/*
Field writes a line with the given name followed by a colon and the
given values. Supported values are strings, booleans (written as 0 or 1),
integers, float64 values and slices of uint and float64. Floats are
written in their shortest form that reads back to the same value.
*/
func (e *Encoder) Field(name string, values ...interface{}) {
	tokens := make([]string, 0, len(values)+1)
	tokens = append(tokens, name+":")
	for _, v := range values {
		tokens = append(tokens, formatValue(v)...)
	}
	e.Line(tokens...)
}

// Line writes the given tokens separated by spaces on a line.
func (e *Encoder) Line(tokens ...string) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(strings.Join(tokens, " ") + "\n")
}

// Flush writes any buffered data and returns the first error found.
func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	e.err = e.w.Flush()
	return e.err
}

// Err returns the first error found writing.
func (e *Encoder) Err() error {
	return e.err
}

func formatValue(v interface{}) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case bool:
		if v {
			return []string{"1"}
		}
		return []string{"0"}
	case int:
		return []string{strconv.Itoa(v)}
	case uint:
		return []string{strconv.FormatUint(uint64(v), 10)}
	case float64:
		return []string{FormatFloat(v)}
	case []float64:
		result := make([]string, len(v))
		for i, f := range v {
			result[i] = FormatFloat(f)
		}
		return result
	case []uint:
		result := make([]string, len(v))
		for i, u := range v {
			result[i] = strconv.FormatUint(uint64(u), 10)
		}
		return result
	case fmt.Stringer:
		return []string{v.String()}
	}
	return []string{fmt.Sprintf("%v", v)}
}

// FormatFloat returns the shortest text that parses back to f.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Decoder reads model data written by an Encoder token by token.
type Decoder struct {
	s *bufio.Scanner
}

// NewDecoder returns a Decoder reading from the given io.Reader.
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxTokenSize)
	s.Split(bufio.ScanWords)
	return &Decoder{s}
}

// Token returns the next token.
func (d *Decoder) Token() (string, error) {
	if !d.s.Scan() {
		if err := d.s.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: unexpected end of data", ErrMalformedData)
	}
	return d.s.Text(), nil
}

// Expect reads the next token and returns an error unless it is the
// given field name followed by a colon.
func (d *Decoder) Expect(name string) error {
	t, err := d.Token()
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if t != name+":" {
		return fmt.Errorf("%w: expected %s: but found %q", ErrMalformedData, name, t)
	}
	return nil
}

// Word reads the named field with a single string value.
func (d *Decoder) Word(name string) (string, error) {
	if err := d.Expect(name); err != nil {
		return "", err
	}
	t, err := d.Token()
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return t, nil
}

// Uint reads the named field with a single uint value.
func (d *Decoder) Uint(name string) (uint, error) {
	if err := d.Expect(name); err != nil {
		return 0, err
	}
	v, err := d.NextUint()
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", name, err)
	}
	return v, nil
}

/*
Count reads the named field with a single uint value giving the number of
values of a later field. It returns an error if the count exceeds the
number of values any field may hold.
*/
func (d *Decoder) Count(name string) (int, error) {
	v, err := d.Uint(name)
	if err != nil {
		return 0, err
	}
	if v > maxCount {
		return 0, fmt.Errorf("%w: %s %d exceeds %d", ErrMalformedData, name, v, maxCount)
	}
	return int(v), nil
}

// Float reads the named field with a single float64 value.
func (d *Decoder) Float(name string) (float64, error) {
	if err := d.Expect(name); err != nil {
		return 0, err
	}
	v, err := d.NextFloat()
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", name, err)
	}
	return v, nil
}

// Bool reads the named field with a single 0 or 1 value.
func (d *Decoder) Bool(name string) (bool, error) {
	v, err := d.Uint(name)
	if err != nil {
		return false, err
	}
	if v > 1 {
		return false, fmt.Errorf("%w: %s must be 0 or 1, found %d", ErrMalformedData, name, v)
	}
	return v == 1, nil
}

// Floats reads the named field with n float64 values.
func (d *Decoder) Floats(name string, n int) ([]float64, error) {
	if err := d.Expect(name); err != nil {
		return nil, err
	}
	if n < 0 || n > maxCount {
		return nil, fmt.Errorf("%w: %s cannot hold %d values", ErrMalformedData, name, n)
	}
	values := make([]float64, n)
	for i := range values {
		v, err := d.NextFloat()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		values[i] = v
	}
	return values, nil
}

// Uints reads the named field with n uint values.
func (d *Decoder) Uints(name string, n int) ([]uint, error) {
	if err := d.Expect(name); err != nil {
		return nil, err
	}
	if n < 0 || n > maxCount {
		return nil, fmt.Errorf("%w: %s cannot hold %d values", ErrMalformedData, name, n)
	}
	values := make([]uint, n)
	for i := range values {
		v, err := d.NextUint()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		values[i] = v
	}
	return values, nil
}

// NextUint reads the next token as a uint.
func (d *Decoder) NextUint() (uint, error) {
	t, err := d.Token()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(t, 10, 0)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	return uint(v), nil
}

// NextFloat reads the next token as a float64.
func (d *Decoder) NextFloat() (float64, error) {
	t, err := d.Token()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	return v, nil
}
