// Package pb holds the versus wire messages and the gRPC service the relay and the
// terminal client talk through. The schema is versus.proto. Messages are encoded
// in protobuf wire format by hand with protowire and must stay in sync with it.
package pb

import (
	"bytes"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Cell values inside GameMessage.Rows.
const (
	Empty  byte = 0
	Locked byte = 1
	Active byte = 2
)

const (
	fieldName     protowire.Number = 1
	fieldGameID   protowire.Number = 2
	fieldStarted  protowire.Number = 3
	fieldGameOver protowire.Number = 4
	fieldLines    protowire.Number = 5
	fieldRows     protowire.Number = 6
)

type GameMessage struct {
	Name     string
	GameID   string
	Started  bool
	GameOver bool
	Lines    int32
	Rows     [][]byte
}

func (m *GameMessage) GetName() string {
	if m == nil {
		return ""
	}
	return m.Name
}

func (m *GameMessage) GetStarted() bool {
	return m != nil && m.Started
}

func (m *GameMessage) GetGameOver() bool {
	return m != nil && m.GameOver
}

func (m *GameMessage) GetLines() int32 {
	if m == nil {
		return 0
	}
	return m.Lines
}

func (m *GameMessage) GetRows() [][]byte {
	if m == nil {
		return nil
	}
	return m.Rows
}

// Marshal encodes m. Zero values are left out like proto3 does.
func (m *GameMessage) Marshal() []byte {
	var b []byte
	if m.Name != "" {
		b = protowire.AppendTag(b, fieldName, protowire.BytesType)
		b = protowire.AppendString(b, m.Name)
	}
	if m.GameID != "" {
		b = protowire.AppendTag(b, fieldGameID, protowire.BytesType)
		b = protowire.AppendString(b, m.GameID)
	}
	if m.Started {
		b = protowire.AppendTag(b, fieldStarted, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(m.Started))
	}
	if m.GameOver {
		b = protowire.AppendTag(b, fieldGameOver, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(m.GameOver))
	}
	if m.Lines != 0 {
		b = protowire.AppendTag(b, fieldLines, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Lines)) //nolint:gosec
	}
	for _, r := range m.Rows {
		b = protowire.AppendTag(b, fieldRows, protowire.BytesType)
		b = protowire.AppendBytes(b, r)
	}
	return b
}

// Unmarshal replaces the content of m with the message encoded in b. Unknown
// fields are skipped.
func (m *GameMessage) Unmarshal(b []byte) error {
	*m = GameMessage{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("failed to read tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldName && typ == protowire.BytesType:
			m.Name, n = protowire.ConsumeString(b)
		case num == fieldGameID && typ == protowire.BytesType:
			m.GameID, n = protowire.ConsumeString(b)
		case num == fieldStarted && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			m.Started = protowire.DecodeBool(v)
		case num == fieldGameOver && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			m.GameOver = protowire.DecodeBool(v)
		case num == fieldLines && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			m.Lines = int32(v) //nolint:gosec
		case num == fieldRows && typ == protowire.BytesType:
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			// the buffer belongs to the transport and may be reused.
			m.Rows = append(m.Rows, bytes.Clone(v))
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("failed to read field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}
