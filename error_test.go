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
	"testing"
	"time"
)

func TestCancelled(t *testing.T) {
	cases := []struct {
		reason any
		want   string
	}{
		{nil, "rendering cancelled"},
		{"zoom", "rendering cancelled: zoom"},
		{errors.New("page destroyed"), "rendering cancelled: page destroyed"},
		{42, "rendering cancelled: 42"},
	}
	for _, c := range cases {
		err := Cancelled(c.reason, 10*time.Millisecond)
		if !IsCancelled(err) {
			t.Errorf("%v: not a cancellation error", c.reason)
		}
		if err.Error() != c.want {
			t.Errorf("%v: got %q, want %q", c.reason, err.Error(), c.want)
		}
	}
}

func TestCancelledKeepsExisting(t *testing.T) {
	orig := &RenderingCancelledError{Reason: "x"}
	wrapped := fmt.Errorf("task 3: %w", orig)
	if got := Cancelled(wrapped, 0); got != wrapped {
		t.Errorf("wrapped cancellation was replaced: %v", got)
	}
	if got := Cancelled(orig, 0); got != orig {
		t.Errorf("cancellation was replaced: %v", got)
	}
}

func TestSurfaceInUse(t *testing.T) {
	var err error = &SurfaceInUseError{Surface: "canvas 1"}
	if !errors.Is(err, ErrSurfaceInUse) {
		t.Error("SurfaceInUseError does not wrap ErrSurfaceInUse")
	}
	if IsCancelled(err) {
		t.Error("SurfaceInUseError reported as cancellation")
	}
}

func TestCombine(t *testing.T) {
	cases := []struct {
		intent    RenderingIntent
		mode      AnnotationMode
		isEditing bool
		want      RenderingIntent
	}{
		{IntentDisplay, AnnotationModeEnable, false, IntentDisplay},
		{IntentDisplay, AnnotationModeDisable, false, IntentDisplay | IntentAnnotationsDisable},
		{IntentDisplay, AnnotationModeEnableForms, true, IntentDisplay | IntentAnnotationsForms | IntentIsEditing},
		{IntentPrint, AnnotationModeEnableStorage, true, IntentPrint | IntentAnnotationsStorage},
	}
	for _, c := range cases {
		got := Combine(c.intent, c.mode, c.isEditing)
		if got != c.want {
			t.Errorf("Combine(%s, %d, %t) = %s, want %s",
				c.intent, c.mode, c.isEditing, got, c.want)
		}
	}
}
