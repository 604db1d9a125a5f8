package ecs

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"reflect"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// Serializer is implemented (on the pointer type) by component values that encode
// themselves. Values that don't implement it are encoded as JSON.
type Serializer interface {
	Serialize(w io.Writer) error
	Deserialize(r io.Reader) error
}

var serializerType = reflect.TypeFor[Serializer]()

// maxValueSize bounds a single encoded component value.
const maxValueSize = 64 << 20

type byteReader interface {
	io.Reader
	io.ByteReader
}

// asByteReader returns r itself when it can already read single bytes, so nested decoders
// sharing one stream never buffer past their own data.
func asByteReader(r io.Reader) byteReader {
	if br, ok := r.(byteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}

func writeUvarint(w io.Writer, v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	_, err := w.Write(buf[:n])
	return err
}

func writeBlob(w io.Writer, data []byte) error {
	if err := writeUvarint(w, uint64(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

func readBlob(r byteReader) ([]byte, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n > maxValueSize {
		return nil, eris.Errorf("blob of %d bytes exceeds limit %d", n, maxValueSize)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (t *ComponentTable[T]) encodeValue(v *T) ([]byte, error) {
	if t.serializable {
		var buf bytes.Buffer
		if err := any(v).(Serializer).Serialize(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return json.Marshal(v)
}

func (t *ComponentTable[T]) decodeValue(data []byte, v *T) error {
	if t.serializable {
		return any(v).(Serializer).Deserialize(bytes.NewReader(data))
	}
	return json.Unmarshal(data, v)
}

// Serialize writes the table's members and values: the entity count, then for each member
// its id and its encoded value. Only membership and values are written; capacity is not.
func (t *ComponentTable[T]) Serialize(w io.Writer) error {
	if err := writeUvarint(w, uint64(t.length)); err != nil {
		return eris.Wrapf(err, "failed to write %s length", t.name)
	}

	var buf [binary.MaxVarintLen64]byte
	for i := 0; i < t.length; i++ {
		n := binary.PutUvarint(buf[:], uint64(t.entities[i]))
		if _, err := w.Write(buf[:n]); err != nil {
			return eris.Wrapf(err, "failed to write %s entity", t.name)
		}

		data, err := t.encodeValue(&t.dense[i])
		if err != nil {
			return eris.Wrapf(err, "failed to serialize %s of entity %d", t.name, t.entities[i])
		}
		if err := writeBlob(w, data); err != nil {
			return eris.Wrapf(err, "failed to write %s of entity %d", t.name, t.entities[i])
		}
	}
	return nil
}

// Deserialize replaces the table's contents with data written by Serialize. Existing values
// are disposed first. The version is bumped before anything is loaded, so a stream that
// fails partway still invalidates views over the partially loaded table.
func (t *ComponentTable[T]) Deserialize(r io.Reader) error {
	br := asByteReader(r)

	n, err := binary.ReadUvarint(br)
	if err != nil {
		return eris.Wrapf(err, "failed to read %s length", t.name)
	}

	t.Clear()
	t.version++
	for i := uint64(0); i < n; i++ {
		raw, err := binary.ReadUvarint(br)
		if err != nil {
			return eris.Wrapf(err, "failed to read %s entity", t.name)
		}
		if raw > math.MaxInt32 {
			return eris.Wrapf(ErrCorruptTable, "%s: entity %d out of range", t.name, raw)
		}
		e := Entity(raw)
		if t.Has(e) {
			return eris.Wrapf(ErrCorruptTable, "%s: invalid or repeated entity %d", t.name, e)
		}

		data, err := readBlob(br)
		if err != nil {
			return eris.Wrapf(err, "failed to read %s of entity %d", t.name, e)
		}
		var v T
		if err := t.decodeValue(data, &v); err != nil {
			return eris.Wrapf(err, "failed to deserialize %s of entity %d", t.name, e)
		}
		t.insert(e, v)
	}
	return nil
}
