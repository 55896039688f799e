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

package pdfview

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSurfaceInUse is wrapped by [SurfaceInUseError].
	ErrSurfaceInUse = errors.New("surface in use by another render task")

	// ErrNotResolved indicates that an object was requested synchronously
	// before the object was made available.
	ErrNotResolved = errors.New("object not resolved yet")

	// ErrAbstract is returned when a method of a base type is called, which
	// must be provided by the concrete type instead.
	ErrAbstract = errors.New("not implemented by the base type")
)

// RenderingCancelledError is delivered to a render task when the task
// is cancelled before it completed.  This is the normal outcome of a
// superseded render request, not a failure.
type RenderingCancelledError struct {
	Reason string

	// ExtraDelay is the additional time the caller asked to wait
	// before the underlying operator list stream is torn down.
	ExtraDelay time.Duration
}

func (err *RenderingCancelledError) Error() string {
	msg := "rendering cancelled"
	if err.Reason != "" {
		msg += ": " + err.Reason
	}
	return msg
}

// Cancelled converts a cancellation reason into a [RenderingCancelledError].
// Errors are kept as they are if they already are cancellation errors.
func Cancelled(reason any, extraDelay time.Duration) error {
	switch r := reason.(type) {
	case nil:
		return &RenderingCancelledError{ExtraDelay: extraDelay}
	case *RenderingCancelledError:
		return r
	case error:
		if IsCancelled(r) {
			return r
		}
		return &RenderingCancelledError{Reason: r.Error(), ExtraDelay: extraDelay}
	case string:
		return &RenderingCancelledError{Reason: r, ExtraDelay: extraDelay}
	default:
		return &RenderingCancelledError{Reason: fmt.Sprint(r), ExtraDelay: extraDelay}
	}
}

// IsCancelled reports whether err, or any error wrapped by err, is a
// [RenderingCancelledError].
func IsCancelled(err error) bool {
	var c *RenderingCancelledError
	return errors.As(err, &c)
}

// SurfaceInUseError is returned when a render task tries to draw onto a
// surface which is still used by another task.
type SurfaceInUseError struct {
	Surface string
}

func (err *SurfaceInUseError) Error() string {
	return "cannot use the same surface during multiple render operations (" +
		err.Surface + ")"
}

func (err *SurfaceInUseError) Unwrap() error {
	return ErrSurfaceInUse
}

// MalformedOperatorError describes an operator in an operator list which
// could not be executed.  Errors of this type are logged, the operator
// is skipped and execution continues.
type MalformedOperatorError struct {
	Index int
	Op    string
	Err   error
}

func (err *MalformedOperatorError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	return fmt.Sprintf("operator %d (%s)%s", err.Index, err.Op, middle)
}

func (err *MalformedOperatorError) Unwrap() error {
	return err.Err
}
