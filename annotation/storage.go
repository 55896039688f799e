// seehuhn.de/go/pdfview - render PDF operator lists and edit annotations
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package annotation

import (
	"encoding/hex"
	"encoding/json"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"

	"seehuhn.de/go/pdfview"
)

// Serializer is implemented by annotation editors.
type Serializer interface {
	// Serialize returns the record for the current editor state.  The
	// second return value is false if the editor is empty and must not be
	// saved.
	Serialize(isForCopying bool) (Record, bool)
}

// ElementLinker is implemented by serializers which replace an existing
// annotation of the PDF file.
type ElementLinker interface {
	AnnotationElementID() string
}

// Kind distinguishes the two kinds of storage values.
type Kind uint8

// These are the possible values of Kind.
const (
	KindRaw Kind = iota + 1
	KindEditor
)

// Value is a storage value.  This is either a record or a live editor.
type Value struct {
	Kind   Kind
	Raw    Record
	Editor Serializer
}

// RawValue wraps a record into a storage value.
func RawValue(r Record) Value {
	return Value{Kind: KindRaw, Raw: r}
}

// EditorValue wraps an editor into a storage value.
func EditorValue(e Serializer) Value {
	return Value{Kind: KindEditor, Editor: e}
}

// IsZero reports whether v is the zero value.
func (v Value) IsZero() bool {
	return v.Kind == 0
}

// Record returns the record for v.
// For editors, the editor is serialized.
func (v Value) Record() (Record, bool) {
	switch v.Kind {
	case KindRaw:
		return v.Raw, v.Raw != nil
	case KindEditor:
		return v.Editor.Serialize(false)
	}
	return nil, false
}

// same reports whether v and w refer to the same object.
func (v Value) same(w Value) bool {
	if v.Kind != w.Kind {
		return false
	}
	switch v.Kind {
	case KindRaw:
		return sameObject(v.Raw, w.Raw)
	case KindEditor:
		return sameObject(v.Editor, w.Editor)
	}
	return true
}

func sameObject(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}

// Storage maps keys to annotation values.
//
// The storage tracks whether it has been modified.  Setting a value which
// is identical to the stored one does not count as a modification, and
// removing the last entry resets the modified flag.
//
// A Storage is safe for concurrent use.  The callbacks are called without
// holding the lock.
type Storage struct {
	mu       sync.Mutex
	values   map[string]Value
	modified bool

	// gen is incremented whenever the cached modifiedIDs become stale.
	gen         uint64
	modifiedIDs *ModifiedIDs

	onSetModified   func()
	onResetModified func()
}

// NewStorage allocates an empty storage.
func NewStorage() *Storage {
	return &Storage{
		values: make(map[string]Value),
	}
}

// SetOnModified sets a function which is called when the storage goes
// from unmodified to modified.
func (s *Storage) SetOnModified(fn func()) {
	s.mu.Lock()
	s.onSetModified = fn
	s.mu.Unlock()
}

// SetOnResetModified sets a function which is called when the storage goes
// from modified to unmodified.
func (s *Storage) SetOnResetModified(fn func()) {
	s.mu.Lock()
	s.onResetModified = fn
	s.mu.Unlock()
}

// GetValue returns the value stored for key, or def if there is none.
func (s *Storage) GetValue(key string, def Value) Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// GetRawValue returns the value stored for key.
func (s *Storage) GetRawValue(key string) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether a value is stored for key.
func (s *Storage) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

// SetValue stores a value.
func (s *Storage) SetValue(key string, v Value) {
	s.mu.Lock()
	old, ok := s.values[key]
	if ok && old.same(v) {
		s.mu.Unlock()
		return
	}
	s.values[key] = v
	cb := s.setModifiedLocked()
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Touch marks the storage as modified, for example after the state of an
// editor stored as a value has changed.
func (s *Storage) Touch() {
	s.mu.Lock()
	cb := s.setModifiedLocked()
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Remove deletes the value stored for key.
func (s *Storage) Remove(key string) {
	s.mu.Lock()
	if _, ok := s.values[key]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.values, key)
	s.invalidateLocked()
	var cb func()
	if len(s.values) == 0 {
		cb = s.resetModifiedLocked()
	}
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Size returns the number of stored values.
func (s *Storage) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

// Keys returns the keys of all stored values, in sorted order.
func (s *Storage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.values))
}

// All returns a copy of the storage content.
func (s *Storage) All() map[string]Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.values)
}

// Modified reports whether the storage has been modified.
func (s *Storage) Modified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modified
}

// ResetModified clears the modified flag.
func (s *Storage) ResetModified() {
	s.mu.Lock()
	cb := s.resetModifiedLocked()
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (s *Storage) setModifiedLocked() func() {
	s.invalidateLocked()
	if s.modified {
		return nil
	}
	s.modified = true
	return s.onSetModified
}

func (s *Storage) invalidateLocked() {
	s.gen++
	s.modifiedIDs = nil
}

func (s *Storage) resetModifiedLocked() func() {
	if !s.modified {
		return nil
	}
	s.modified = false
	return s.onResetModified
}

// Snapshot is a serialized view of a storage.
type Snapshot struct {
	// Map contains the records of all non-empty values.
	Map map[string]Record

	// Hash is a content hash of Map.  Two snapshots with the same content
	// have the same hash.  The hash of an empty snapshot is "".
	Hash string

	// Transfer lists the bitmaps referenced by stamp records.
	Transfer []string
}

// Serializable returns a snapshot of the storage content.
// Editors which are empty are omitted.
func (s *Storage) Serializable() Snapshot {
	s.mu.Lock()
	values := maps.Clone(s.values)
	s.mu.Unlock()

	m := make(map[string]Record, len(values))
	for key, v := range values {
		r, ok := v.Record()
		if !ok {
			continue
		}
		m[key] = r
	}
	return newSnapshot(m)
}

func newSnapshot(m map[string]Record) Snapshot {
	if len(m) == 0 {
		return Snapshot{}
	}

	keys := slices.Sorted(maps.Keys(m))

	h, _ := blake2b.New256(nil)
	var transfer []string
	for _, key := range keys {
		r := m[key]
		data, err := MarshalRecord(r)
		if err != nil {
			pdfview.Logger().Warn("cannot serialize annotation",
				"key", key, "error", err)
			continue
		}
		h.Write([]byte(key))
		h.Write([]byte{':'})
		h.Write(data)
		h.Write([]byte{'\n'})
		if stamp, ok := r.(*StampRecord); ok && stamp.BitmapID != "" {
			transfer = append(transfer, stamp.BitmapID)
		}
	}
	return Snapshot{
		Map:      m,
		Hash:     hex.EncodeToString(h.Sum(nil)),
		Transfer: transfer,
	}
}

// ModifiedIDs lists the existing annotations which are replaced by editors.
type ModifiedIDs struct {
	IDs  map[string]bool
	Hash string
}

// ModifiedIDs returns the ids of the annotation elements which have been
// modified using an editor.
func (s *Storage) ModifiedIDs() *ModifiedIDs {
	s.mu.Lock()
	if s.modifiedIDs != nil {
		res := s.modifiedIDs
		s.mu.Unlock()
		return res
	}
	values := maps.Clone(s.values)
	gen := s.gen
	s.mu.Unlock()

	ids := make(map[string]bool)
	for _, v := range values {
		if v.Kind != KindEditor {
			continue
		}
		link, ok := v.Editor.(ElementLinker)
		if !ok || link.AnnotationElementID() == "" {
			continue
		}
		if _, ok := v.Editor.Serialize(false); !ok {
			continue
		}
		ids[link.AnnotationElementID()] = true
	}
	list := slices.Sorted(maps.Keys(ids))
	res := &ModifiedIDs{IDs: ids, Hash: strings.Join(list, ",")}

	// Editors may change while the lock is not held.  The result is
	// only cached if the storage is unchanged since values was copied.
	s.mu.Lock()
	if s.gen == gen {
		s.modifiedIDs = res
	}
	s.mu.Unlock()
	return res
}

// Print returns a frozen copy of the storage content, for printing.
// Later changes to s do not affect the copy.
func (s *Storage) Print() *PrintStorage {
	snap := s.Serializable()
	frozen := make(map[string]Record, len(snap.Map))
	for key, r := range snap.Map {
		frozen[key] = cloneRecord(r)
	}
	snap.Map = frozen
	return &PrintStorage{
		snapshot:    snap,
		modifiedIDs: s.ModifiedIDs(),
	}
}

// cloneRecord returns a deep copy of r.
func cloneRecord(r Record) Record {
	data, err := MarshalRecord(r)
	if err != nil {
		return r
	}
	c, err := UnmarshalRecord(data)
	if err != nil {
		return r
	}
	return c
}

// PrintStorage is a read-only snapshot of a [Storage].
type PrintStorage struct {
	snapshot    Snapshot
	modifiedIDs *ModifiedIDs
}

// Serializable returns the frozen snapshot.
func (p *PrintStorage) Serializable() Snapshot {
	return p.snapshot
}

// ModifiedIDs returns the modified annotation ids at the time the
// snapshot was taken.
func (p *PrintStorage) ModifiedIDs() *ModifiedIDs {
	return p.modifiedIDs
}

// Source is implemented by [Storage] and [PrintStorage].
type Source interface {
	Serializable() Snapshot
	ModifiedIDs() *ModifiedIDs
}

var (
	_ Source = (*Storage)(nil)
	_ Source = (*PrintStorage)(nil)
)

// EncodeSnapshot writes the records of a snapshot as a JSON object,
// keyed by storage key.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	out := make(map[string]json.RawMessage, len(snap.Map))
	for key, r := range snap.Map {
		data, err := MarshalRecord(r)
		if err != nil {
			return nil, err
		}
		out[key] = data
	}
	return json.MarshalIndent(out, "", "  ")
}
