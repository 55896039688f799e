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
	"fmt"
	"strings"
)

// RenderingIntent is a bit mask describing why a page is rendered.
type RenderingIntent uint16

// Possible values for RenderingIntent.
const (
	IntentAny RenderingIntent = 1 << iota
	IntentDisplay
	IntentPrint
	IntentAnnotationsForms
	IntentAnnotationsStorage
	IntentAnnotationsDisable
	IntentIsEditing

	IntentOpList RenderingIntent = 1 << 8
)

// AnnotationMode selects which annotations are included in a rendering.
type AnnotationMode uint8

// Possible values for AnnotationMode.
const (
	AnnotationModeDisable AnnotationMode = iota
	AnnotationModeEnable
	AnnotationModeEnableForms
	AnnotationModeEnableStorage
)

// ParseIntent converts an intent name ("display", "print" or "any") into
// the corresponding flag.
func ParseIntent(name string) (RenderingIntent, error) {
	switch name {
	case "", "display":
		return IntentDisplay, nil
	case "print":
		return IntentPrint, nil
	case "any":
		return IntentAny, nil
	}
	return 0, fmt.Errorf("invalid rendering intent %q", name)
}

// Combine merges a rendering intent name and an annotation mode into the
// flag set used for caching operator lists.
func Combine(intent RenderingIntent, mode AnnotationMode, isEditing bool) RenderingIntent {
	switch mode {
	case AnnotationModeDisable:
		intent |= IntentAnnotationsDisable
	case AnnotationModeEnableForms:
		intent |= IntentAnnotationsForms
	case AnnotationModeEnableStorage:
		intent |= IntentAnnotationsStorage
	}
	if isEditing && intent&IntentPrint == 0 {
		intent |= IntentIsEditing
	}
	return intent
}

func (ri RenderingIntent) String() string {
	var parts []string
	names := []string{"any", "display", "print", "forms", "storage", "disable", "editing"}
	for i, name := range names {
		if ri&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if ri&IntentOpList != 0 {
		parts = append(parts, "oplist")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
