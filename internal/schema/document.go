// document.go
//
// Collaborative relational database schema design service
// Copyright (c) 2026 SQLizer
//
// This file is part of sqlizer.
// sqlizer is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// sqlizer is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with sqlizer.
// If not, see <https://www.gnu.org/licenses/>.

// Package schema holds the shared schema document and every structural
// mutation the collaboration layer can apply to it. Mutations validate
// before touching the document, so a rejected command never leaves the
// document half-changed.
package schema

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sqlizer/sqlizer/internal/types"
)

// FieldRef addresses one side of a relation.
type FieldRef struct {
	Table string `json:"table"`
	Field string `json:"field"`
}

// Relation is a directed foreign-key edge between two table fields.
// The id is assigned at creation time and is the stable handle for
// update/delete; the from/to quad is kept for older clients that still
// address relations structurally.
type Relation struct {
	ID   string   `json:"id,omitempty"`
	From FieldRef `json:"from"`
	To   FieldRef `json:"to"`
}

// Field is one column of a designed table. Type is free-form text.
type Field struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Autoincrement bool    `json:"autoincrement"`
	PK            bool    `json:"pk"`
	Nullable      bool    `json:"nullable"`
	DefaultValue  *string `json:"defaultValue,omitempty"`
}

// Table is a designed table with its canvas position.
type Table struct {
	Name   string  `json:"name"`
	PosX   float64 `json:"posX"`
	PosY   float64 `json:"posY"`
	Fields []Field `json:"fields"`
}

// Document is the unit of collaboration: one schema per canvas.
// Table names are unique (case-sensitive); relations reference existing
// tables at the time they are added.
type Document struct {
	DBName    string     `json:"dbName"`
	Tables    []Table    `json:"tables"`
	Relations []Relation `json:"relations"`
}

// NewDocument returns an empty document. New canvases start this way.
func NewDocument(name string) *Document {
	return &Document{DBName: name, Tables: []Table{}, Relations: []Relation{}}
}

// Parse decodes a stored document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, types.Store("malformed schema document: %v", err)
	}
	if doc.Tables == nil {
		doc.Tables = []Table{}
	}
	if doc.Relations == nil {
		doc.Relations = []Relation{}
	}
	return &doc, nil
}

// Bytes encodes the document for storage.
func (d *Document) Bytes() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, types.Store("failed to encode schema document: %v", err)
	}
	return data, nil
}

func (d *Document) tableIndex(name string) int {
	for i := range d.Tables {
		if d.Tables[i].Name == name {
			return i
		}
	}
	return -1
}

// FindTable returns the table with the given name, or nil.
func (d *Document) FindTable(name string) *Table {
	if i := d.tableIndex(name); i >= 0 {
		return &d.Tables[i]
	}
	return nil
}

func (t *Table) fieldIndex(name string) int {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

// CreateTable appends a new table. The name must not already be present.
func (d *Document) CreateTable(table Table) error {
	if table.Name == "" {
		return types.Validation("table name must not be empty")
	}
	if d.tableIndex(table.Name) >= 0 {
		return types.Conflict("table '%s' already exists", table.Name)
	}
	seen := make(map[string]struct{}, len(table.Fields))
	for _, f := range table.Fields {
		if f.Name == "" {
			return types.Validation("field name must not be empty")
		}
		if _, dup := seen[f.Name]; dup {
			return types.Conflict("duplicate field '%s' in table '%s'", f.Name, table.Name)
		}
		seen[f.Name] = struct{}{}
	}
	if table.Fields == nil {
		table.Fields = []Field{}
	}
	d.Tables = append(d.Tables, table)
	return nil
}

// RenameTable changes a table's name and rewrites relation endpoints that
// reference it, so renaming never leaves dangling foreign-key edges.
func (d *Document) RenameTable(oldName, newName string) error {
	if newName == "" {
		return types.Validation("table name must not be empty")
	}
	i := d.tableIndex(oldName)
	if i < 0 {
		return types.NotFound("table '%s' does not exist", oldName)
	}
	if oldName != newName && d.tableIndex(newName) >= 0 {
		return types.Conflict("table '%s' already exists", newName)
	}
	d.Tables[i].Name = newName
	for j := range d.Relations {
		if d.Relations[j].From.Table == oldName {
			d.Relations[j].From.Table = newName
		}
		if d.Relations[j].To.Table == oldName {
			d.Relations[j].To.Table = newName
		}
	}
	return nil
}

// MoveTable updates a table's canvas coordinates.
func (d *Document) MoveTable(name string, posX, posY float64) error {
	i := d.tableIndex(name)
	if i < 0 {
		return types.NotFound("table '%s' does not exist", name)
	}
	d.Tables[i].PosX = posX
	d.Tables[i].PosY = posY
	return nil
}

// DeleteTable removes a table together with every relation that references
// it by name, and returns the removed relations so callers can broadcast
// them. Relations are matched by endpoint, never by position.
func (d *Document) DeleteTable(name string) ([]Relation, error) {
	i := d.tableIndex(name)
	if i < 0 {
		return nil, types.NotFound("table '%s' does not exist", name)
	}
	d.Tables = append(d.Tables[:i], d.Tables[i+1:]...)

	var removed []Relation
	kept := d.Relations[:0]
	for _, rel := range d.Relations {
		if rel.From.Table == name || rel.To.Table == name {
			removed = append(removed, rel)
			continue
		}
		kept = append(kept, rel)
	}
	d.Relations = kept
	return removed, nil
}

// CreateField appends a field to an existing table.
func (d *Document) CreateField(tableName string, field Field) error {
	if field.Name == "" {
		return types.Validation("field name must not be empty")
	}
	i := d.tableIndex(tableName)
	if i < 0 {
		return types.NotFound("table '%s' does not exist", tableName)
	}
	if d.Tables[i].fieldIndex(field.Name) >= 0 {
		return types.Conflict("field '%s' already exists in table '%s'", field.Name, tableName)
	}
	d.Tables[i].Fields = append(d.Tables[i].Fields, field)
	return nil
}

// UpdateField replaces a field entry. A rename to an already-taken name
// is rejected.
func (d *Document) UpdateField(tableName, fieldName string, field Field) error {
	if field.Name == "" {
		return types.Validation("field name must not be empty")
	}
	i := d.tableIndex(tableName)
	if i < 0 {
		return types.NotFound("table '%s' does not exist", tableName)
	}
	j := d.Tables[i].fieldIndex(fieldName)
	if j < 0 {
		return types.NotFound("field '%s' does not exist in table '%s'", fieldName, tableName)
	}
	if field.Name != fieldName && d.Tables[i].fieldIndex(field.Name) >= 0 {
		return types.Conflict("field '%s' already exists in table '%s'", field.Name, tableName)
	}
	d.Tables[i].Fields[j] = field
	return nil
}

// DeleteField removes a field from a table.
func (d *Document) DeleteField(tableName, fieldName string) error {
	i := d.tableIndex(tableName)
	if i < 0 {
		return types.NotFound("table '%s' does not exist", tableName)
	}
	j := d.Tables[i].fieldIndex(fieldName)
	if j < 0 {
		return types.NotFound("field '%s' does not exist in table '%s'", fieldName, tableName)
	}
	d.Tables[i].Fields = append(d.Tables[i].Fields[:j], d.Tables[i].Fields[j+1:]...)
	return nil
}

// CreateRelation appends a foreign-key edge. Both referenced tables must
// exist and an edge with the same from/to quad must not already be
// present. The returned relation carries its assigned id.
func (d *Document) CreateRelation(rel Relation) (Relation, error) {
	if rel.From.Table == "" || rel.From.Field == "" || rel.To.Table == "" || rel.To.Field == "" {
		return Relation{}, types.Validation("relation endpoints must name a table and a field")
	}
	if d.tableIndex(rel.From.Table) < 0 {
		return Relation{}, types.NotFound("table '%s' does not exist", rel.From.Table)
	}
	if d.tableIndex(rel.To.Table) < 0 {
		return Relation{}, types.NotFound("table '%s' does not exist", rel.To.Table)
	}
	for _, existing := range d.Relations {
		if sameEndpoints(existing, rel) {
			return Relation{}, types.Conflict("relation %s.%s -> %s.%s already exists",
				rel.From.Table, rel.From.Field, rel.To.Table, rel.To.Field)
		}
	}
	rel.ID = uuid.NewString()
	d.Relations = append(d.Relations, rel)
	return rel, nil
}

// UpdateRelation replaces the endpoints of an existing edge, keeping its id.
func (d *Document) UpdateRelation(id string, rel Relation) (Relation, error) {
	if id == "" {
		return Relation{}, types.Validation("relation id must not be empty")
	}
	idx := -1
	for i := range d.Relations {
		if d.Relations[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Relation{}, types.NotFound("relation '%s' does not exist", id)
	}
	if d.tableIndex(rel.From.Table) < 0 {
		return Relation{}, types.NotFound("table '%s' does not exist", rel.From.Table)
	}
	if d.tableIndex(rel.To.Table) < 0 {
		return Relation{}, types.NotFound("table '%s' does not exist", rel.To.Table)
	}
	for i, existing := range d.Relations {
		if i != idx && sameEndpoints(existing, rel) {
			return Relation{}, types.Conflict("relation %s.%s -> %s.%s already exists",
				rel.From.Table, rel.From.Field, rel.To.Table, rel.To.Field)
		}
	}
	rel.ID = id
	d.Relations[idx] = rel
	return rel, nil
}

// DeleteRelation removes an edge by id, or by structural match of the
// from/to quad when no id is supplied. At most one edge is removed.
func (d *Document) DeleteRelation(id string, match Relation) (Relation, error) {
	for i, existing := range d.Relations {
		if id != "" {
			if existing.ID != id {
				continue
			}
		} else if !sameEndpoints(existing, match) {
			continue
		}
		d.Relations = append(d.Relations[:i], d.Relations[i+1:]...)
		return existing, nil
	}
	if id != "" {
		return Relation{}, types.NotFound("relation '%s' does not exist", id)
	}
	return Relation{}, types.NotFound("relation %s.%s -> %s.%s does not exist",
		match.From.Table, match.From.Field, match.To.Table, match.To.Field)
}

func sameEndpoints(a, b Relation) bool {
	return a.From == b.From && a.To == b.To
}
