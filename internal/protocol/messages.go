// Package protocol defines the JSON messages exchanged between the host
// process and the editor surface. Every message is a JSON object whose
// "type" field names its kind.
package protocol

import "encoding/json"

// Type is the discriminator carried in the "type" field.
type Type string

// Surface to host.
const (
	TypeReady         Type = "ready"
	TypeSaveDesign    Type = "saveDesign"
	TypeExportResult  Type = "exportResult"
	TypeConfirmSketch Type = "confirmSketch"
	TypeAskUser       Type = "askUser"
	TypeError         Type = "error"
	TypeLog           Type = "log"
)

// Host to surface.
const (
	TypeLoadDesign    Type = "loadDesign"
	TypeExportDesign  Type = "exportDesign"
	TypeUserResponse  Type = "userResponse"
	TypeMCPContext    Type = "mcpContext"
	TypeDesignChanged Type = "designChanged"
)

// Message is implemented by every message struct.
type Message interface {
	MessageType() Type
}

// Ready is sent once the surface has booted.
type Ready struct{}

// SaveDesign asks the host to persist the design.
type SaveDesign struct {
	SVG    string `json:"svg"`
	JSON   string `json:"json"`
	Title  string `json:"title"`
	Prompt string `json:"prompt,omitempty"`
}

// ExportResult answers an ExportDesign request.
type ExportResult struct {
	SVG    string `json:"svg"`
	JSON   string `json:"json"`
	Title  string `json:"title"`
	Prompt string `json:"prompt,omitempty"`
}

// ConfirmSketch hands a finished sketch back for the pending AI request.
type ConfirmSketch struct {
	SVG   string `json:"svg"`
	JSON  string `json:"json"`
	Title string `json:"title"`
}

// QuestionType selects the host dialog used for an AskUser request.
type QuestionType string

const (
	QuestionConfirm QuestionType = "confirm"
	QuestionSelect  QuestionType = "select"
	QuestionText    QuestionType = "text"
)

// AskUser asks the host to show a dialog. The answer comes back as a
// UserResponse carrying the same RequestID.
type AskUser struct {
	RequestID    string       `json:"requestId"`
	QuestionType QuestionType `json:"questionType"`
	Title        string       `json:"title"`
	Placeholder  string       `json:"placeholder,omitempty"`
	Options      []string     `json:"options,omitempty"`
}

// Error reports a failure inside the surface.
type Error struct {
	Message string          `json:"message"`
	Stack   string          `json:"stack,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Log forwards a surface log line to the host logger.
type Log struct {
	Level   string          `json:"level"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// LoadDesign replaces the surface's document.
type LoadDesign struct {
	JSON string `json:"json"`
}

// ExportDesign asks the surface for an ExportResult.
type ExportDesign struct{}

// UserResponse answers an AskUser. Value is nil when the user cancelled,
// a bool for confirmations and a string otherwise.
type UserResponse struct {
	RequestID string `json:"requestId"`
	Value     any    `json:"value"`
}

// MCPContext tells the surface which AI request it is sketching for.
type MCPContext struct {
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// DesignChanged pushes the host's document after a host-side mutation.
type DesignChanged struct {
	JSON string `json:"json"`
}

func (Ready) MessageType() Type         { return TypeReady }
func (SaveDesign) MessageType() Type    { return TypeSaveDesign }
func (ExportResult) MessageType() Type  { return TypeExportResult }
func (ConfirmSketch) MessageType() Type { return TypeConfirmSketch }
func (AskUser) MessageType() Type       { return TypeAskUser }
func (Error) MessageType() Type         { return TypeError }
func (Log) MessageType() Type           { return TypeLog }
func (LoadDesign) MessageType() Type    { return TypeLoadDesign }
func (ExportDesign) MessageType() Type  { return TypeExportDesign }
func (UserResponse) MessageType() Type  { return TypeUserResponse }
func (MCPContext) MessageType() Type    { return TypeMCPContext }
func (DesignChanged) MessageType() Type { return TypeDesignChanged }
