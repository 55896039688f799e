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

package render

import (
	"fmt"
	"sync"

	"seehuhn.de/go/pdfview"
)

// Leases makes sure that a surface is used by at most one render task at
// a time.  Leases is safe for concurrent use.
type Leases struct {
	mu   sync.Mutex
	busy map[any]*Lease
}

// NewLeases allocates an empty lease registry.
func NewLeases() *Leases {
	return &Leases{busy: make(map[any]*Lease)}
}

// Lease grants exclusive use of a surface.
type Lease struct {
	owner   *Leases
	surface any
	once    sync.Once
}

// Acquire reserves a surface.  Surfaces are compared using ==, so surface
// must be comparable, normally a pointer.  If the surface is already
// reserved, an error of type [*pdfview.SurfaceInUseError] is returned.
func (l *Leases) Acquire(surface any) (*Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.busy[surface]; ok {
		return nil, &pdfview.SurfaceInUseError{Surface: fmt.Sprintf("%T %p", surface, surface)}
	}
	lease := &Lease{owner: l, surface: surface}
	l.busy[surface] = lease
	return lease, nil
}

// InUse reports whether the surface is currently reserved.
func (l *Leases) InUse(surface any) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.busy[surface]
	return ok
}

// Release gives up the reservation.  Only the first call has an effect.
// Releasing an old lease never affects a newer lease on the same surface.
func (lease *Lease) Release() {
	lease.once.Do(func() {
		l := lease.owner
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.busy[lease.surface] == lease {
			delete(l.busy, lease.surface)
		}
	})
}
