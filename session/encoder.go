package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/MrEthical07/dnaAuth/permission"
)

const sessionFormatVersionCurrent = 1

// Encode serializes s into the versioned binary form stored by [RedisStore].
// Timestamps keep millisecond precision.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersionCurrent)

	for _, field := range []struct {
		name  string
		value string
	}{
		{"clientKey", s.ClientKey},
		{"sequence", s.Sequence},
		{"role", s.Role},
		{"token", s.Token},
	} {
		if len(field.value) > 255 {
			return nil, errors.New(field.name + " too long")
		}
		buf.WriteByte(byte(len(field.value)))
		buf.WriteString(field.value)
	}

	maskBytes := permission.EncodeMask(s.Mask)
	buf.WriteByte(byte(len(maskBytes)))
	buf.Write(maskBytes)

	if err := binary.Write(&buf, binary.BigEndian, s.IssuedAt.UnixMilli()); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt.UnixMilli()); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses the output of [Encode].
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionFormatVersionCurrent {
		return nil, errors.New("invalid session version")
	}

	s := &Session{}
	for _, dst := range []*string{&s.ClientKey, &s.Sequence, &s.Role, &s.Token} {
		if *dst, err = readString(reader); err != nil {
			return nil, err
		}
	}

	maskSize, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	maskBytes := make([]byte, maskSize)
	if _, err := io.ReadFull(reader, maskBytes); err != nil {
		return nil, err
	}
	if s.Mask, err = permission.DecodeMask(maskBytes); err != nil {
		return nil, err
	}

	var issued, expires int64
	if err := binary.Read(reader, binary.BigEndian, &issued); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &expires); err != nil {
		return nil, err
	}
	s.IssuedAt = time.UnixMilli(issued)
	s.ExpiresAt = time.UnixMilli(expires)

	if reader.Len() != 0 {
		return nil, errors.New("trailing session bytes")
	}

	return s, nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
