package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType is returned by Decode for a message kind it does not know.
var ErrUnknownType = errors.New("unknown message type")

// Encode marshals m with its "type" field set.
func Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	typ, _ := json.Marshal(m.MessageType())
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(typ)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode parses one message. Unrecognized kinds yield an error wrapping
// ErrUnknownType.
func Decode(data []byte) (Message, error) {
	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	var m Message
	switch head.Type {
	case TypeReady:
		return Ready{}, nil
	case TypeExportDesign:
		return ExportDesign{}, nil
	case TypeSaveDesign:
		m = &SaveDesign{}
	case TypeExportResult:
		m = &ExportResult{}
	case TypeConfirmSketch:
		m = &ConfirmSketch{}
	case TypeAskUser:
		m = &AskUser{}
	case TypeError:
		m = &Error{}
	case TypeLog:
		m = &Log{}
	case TypeLoadDesign:
		m = &LoadDesign{}
	case TypeUserResponse:
		m = &UserResponse{}
	case TypeMCPContext:
		m = &MCPContext{}
	case TypeDesignChanged:
		m = &DesignChanged{}
	case "":
		return nil, fmt.Errorf("decode message: missing type")
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownType, string(head.Type))
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.Type, err)
	}
	return deref(m), nil
}

// deref returns message values so handlers can type-switch on plain structs.
func deref(m Message) Message {
	switch v := m.(type) {
	case *SaveDesign:
		return *v
	case *ExportResult:
		return *v
	case *ConfirmSketch:
		return *v
	case *AskUser:
		return *v
	case *Error:
		return *v
	case *Log:
		return *v
	case *LoadDesign:
		return *v
	case *UserResponse:
		return *v
	case *MCPContext:
		return *v
	case *DesignChanged:
		return *v
	}
	return m
}
