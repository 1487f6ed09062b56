package canvas

import (
	"encoding/json"

	"github.com/sqlizer/sqlizer/internal/schema"
	"github.com/sqlizer/sqlizer/internal/types"
)

// Socket events. Every client command has a matching response event that
// carries the applied delta; faults travel on EventSocketError.
const (
	EventSocketError         = "socketError"
	EventResponseGetDatabase = "responseGetDatabase"
	EventUserJoinRoom        = "userJoinRoom"
	EventUserLeaveRoom       = "userLeaveRoom"

	EventRequestCreateTable      = "requestCreateTable"
	EventResponseCreateTable     = "responseCreateTable"
	EventRequestCreateField      = "requestCreateField"
	EventResponseCreateField     = "responseCreateField"
	EventRequestUpdateTableName  = "requestUpdateTableName"
	EventResponseUpdateTableName = "responseUpdateTableName"
	EventRequestDeleteTable      = "requestDeleteTable"
	EventResponseDeleteTable     = "responseDeleteTable"
	EventRequestMoveTable        = "requestMoveTable"
	EventResponseMoveTable       = "responseMoveTable"
	EventRequestUpdateField      = "requestUpdateField"
	EventResponseUpdateField     = "responseUpdateField"
	EventRequestDeleteField      = "requestDeleteField"
	EventResponseDeleteField     = "responseDeleteField"
	EventRequestCreateEdge       = "requestCreateEdge"
	EventResponseCreateEdge      = "responseCreateEdge"
	EventRequestUpdateEdge       = "requestUpdateEdge"
	EventResponseUpdateEdge      = "responseUpdateEdge"
	EventRequestDeleteEdge       = "requestDeleteEdge"
	EventResponseDeleteEdge      = "responseDeleteEdge"
)

// Envelope frames every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// CreateTablePayload is the requestCreateTable command.
type CreateTablePayload struct {
	Name   string                       `json:"name"`
	PosX   types.FlexFloat64            `json:"posX"`
	PosY   types.FlexFloat64            `json:"posY"`
	Fields types.FlexList[schema.Field] `json:"fields"`
}

// CreateFieldPayload is the requestCreateField command.
type CreateFieldPayload struct {
	TableName string       `json:"tableName"`
	Field     schema.Field `json:"field"`
}

// UpdateTableNamePayload is the requestUpdateTableName command.
type UpdateTableNamePayload struct {
	TableName string `json:"tableName"`
	NewName   string `json:"newName"`
}

// DeleteTablePayload is the requestDeleteTable command.
type DeleteTablePayload struct {
	TableName string `json:"tableName"`
}

// MoveTablePayload is the requestMoveTable command.
type MoveTablePayload struct {
	TableName string            `json:"tableName"`
	PosX      types.FlexFloat64 `json:"posX"`
	PosY      types.FlexFloat64 `json:"posY"`
}

// UpdateFieldPayload is the requestUpdateField command.
type UpdateFieldPayload struct {
	TableName string       `json:"tableName"`
	FieldName string       `json:"fieldName"`
	Field     schema.Field `json:"field"`
}

// DeleteFieldPayload is the requestDeleteField command.
type DeleteFieldPayload struct {
	TableName string `json:"tableName"`
	FieldName string `json:"fieldName"`
}

// EdgePayload is the requestCreateEdge/requestUpdateEdge/requestDeleteEdge
// command. ID addresses an existing relation; delete falls back to the
// from/to quad when the id is empty.
type EdgePayload struct {
	ID   string          `json:"id,omitempty"`
	From schema.FieldRef `json:"from"`
	To   schema.FieldRef `json:"to"`
}

// MoveTableResponse echoes the applied position.
type MoveTableResponse struct {
	TableName string  `json:"tableName"`
	PosX      float64 `json:"posX"`
	PosY      float64 `json:"posY"`
}

// RenameTableResponse echoes the applied rename.
type RenameTableResponse struct {
	TableName string `json:"tableName"`
	NewName   string `json:"newName"`
}

// DeleteTableResponse carries the removed table and the relations that
// were cascaded away with it.
type DeleteTableResponse struct {
	TableName        string            `json:"tableName"`
	RemovedRelations []schema.Relation `json:"removedRelations,omitempty"`
}

// FieldResponse echoes a field mutation.
type FieldResponse struct {
	TableName string        `json:"tableName"`
	FieldName string        `json:"fieldName,omitempty"`
	Field     *schema.Field `json:"field,omitempty"`
}

// DatabaseResponse carries the full authoritative document, sent privately
// to a newly admitted connection.
type DatabaseResponse struct {
	Database *schema.Document `json:"database"`
}

// PresencePayload announces a participant joining or leaving the room.
type PresencePayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imgUrl,omitempty"`
}
