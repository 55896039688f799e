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
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType is returned when a serialized record has an unsupported
// annotation type.
var ErrUnknownType = errors.New("unknown annotation type")

// MarshalRecord encodes a single record as JSON.
// The annotationType field is set from the record type.
func MarshalRecord(r Record) ([]byte, error) {
	if c := r.GetCommon(); c != nil {
		c.AnnotationType = r.AnnotationType()
	}
	return json.Marshal(r)
}

// MarshalRecords encodes a list of records as a JSON array.
func MarshalRecords(rr []Record) ([]byte, error) {
	raw := make([]json.RawMessage, len(rr))
	for i, r := range rr {
		data, err := MarshalRecord(r)
		if err != nil {
			return nil, err
		}
		raw[i] = data
	}
	return json.Marshal(raw)
}

// UnmarshalRecord decodes a single record.
func UnmarshalRecord(data []byte) (Record, error) {
	var head struct {
		AnnotationType Type `json:"annotationType"`
		Deleted        bool `json:"deleted"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	var r Record
	switch {
	case head.Deleted:
		r = &Tombstone{}
	case head.AnnotationType == FreeText:
		r = &FreeTextRecord{}
	case head.AnnotationType == Ink:
		r = &InkRecord{}
	case head.AnnotationType == Highlight:
		r = &HighlightRecord{}
	case head.AnnotationType == Stamp:
		r = &StampRecord{}
	default:
		return nil, fmt.Errorf("%w %d", ErrUnknownType, head.AnnotationType)
	}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("%s record: %w", head.AnnotationType, err)
	}
	return r, nil
}

// UnmarshalRecords decodes a JSON array of records.
func UnmarshalRecords(data []byte) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	res := make([]Record, 0, len(raw))
	for _, item := range raw {
		r, err := UnmarshalRecord(item)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, nil
}
