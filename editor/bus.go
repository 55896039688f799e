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

package editor

// Event is a notification sent through a [Bus].
//
// The possible event types are [EditingStateChanged], [ModeChanged],
// [ParamsChanged], [AnnotationChanged] and [SwitchAnnotationEditorMode].
type Event interface {
	isEvent()
}

// EditorStates summarizes the state of the editing UI.
type EditorStates struct {
	IsEditing          bool
	IsEmpty            bool
	HasSelectedEditor  bool
	HasSomethingToUndo bool
	HasSomethingToRedo bool
}

// EditingStateChanged is sent when any of the [EditorStates] fields
// changes.
type EditingStateChanged struct {
	States EditorStates
}

// ModeChanged is sent after the editing mode has changed.
type ModeChanged struct {
	Mode Mode
}

// ParamsChanged is sent when the properties shown in the UI need updating,
// for example after a different editor has been selected.
type ParamsChanged struct {
	Params []ParamValue
}

// AnnotationChanged is sent when the stored state of an editor changes.
type AnnotationChanged struct {
	ID string
}

// SwitchAnnotationEditorMode asks the host to switch the editing mode,
// for example to edit an existing annotation.
type SwitchAnnotationEditorMode struct {
	Mode           Mode
	EditID         string
	IsFromKeyboard bool
}

func (EditingStateChanged) isEvent()        {}
func (ModeChanged) isEvent()                {}
func (ParamsChanged) isEvent()              {}
func (AnnotationChanged) isEvent()          {}
func (SwitchAnnotationEditorMode) isEvent() {}

// Bus delivers events to subscribers.
// Events are delivered synchronously, in the order of subscription.
type Bus struct {
	subs   []subscription
	nextID int
}

type subscription struct {
	id int
	fn func(Event)
}

// NewBus allocates an event bus without subscribers.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn to receive all events.
// Calling the returned function removes the subscription.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	return func() {
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Dispatch sends ev to all subscribers.
func (b *Bus) Dispatch(ev Event) {
	if b == nil {
		return
	}
	for _, s := range b.subs {
		s.fn(ev)
	}
}
