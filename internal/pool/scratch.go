package pool

import "fmt"

// Role names one scratch buffer of a Scratch. A role's buffer holds one
// intermediate result at a time.
type Role uint8

const (
	RoleTransform  Role = iota // RoleTransform holds shuffled, packed or joined payloads.
	RoleBitmap                 // RoleBitmap holds NA and truth bitmaps.
	RolePatchIndex             // RolePatchIndex holds delta-shuffled ALP patch indices.
	RolePatchValue             // RolePatchValue holds ALP patch values.
	RoleWords                  // RoleWords holds fixed-width words before a transform.

	NumRoles
)

var roleNames = [NumRoles]string{"transform", "bitmap", "patch-index", "patch-value", "words"}

func (r Role) String() string {
	if r < NumRoles {
		return roleNames[r]
	}

	return fmt.Sprintf("Role(%d)", r)
}

// Scratch is the set of scratch buffers of one encode or decode call.
//
// Acquire hands out a role's buffer and Release takes it back; acquiring a
// role that is still held panics, so two intermediate results can never
// share a buffer. A Scratch is not safe for concurrent use.
type Scratch struct {
	bufs [NumRoles]*ByteBuffer
	held [NumRoles]bool
}

// NewScratch creates a Scratch. Buffers are taken from the scratch pool on
// first use.
func NewScratch() *Scratch {
	return &Scratch{}
}

// Acquire returns the empty buffer of role r.
func (s *Scratch) Acquire(r Role) *ByteBuffer {
	if s.held[r] {
		panic(fmt.Sprintf("scratch role %s acquired twice", r))
	}
	s.held[r] = true

	if s.bufs[r] == nil {
		s.bufs[r] = GetScratchBuffer()
	}
	s.bufs[r].Reset()

	return s.bufs[r]
}

// Release marks role r free again. The buffer keeps its capacity.
func (s *Scratch) Release(r Role) {
	s.held[r] = false
}

// Held reports whether role r is acquired.
func (s *Scratch) Held(r Role) bool {
	return s.held[r]
}

// Close returns every buffer to the scratch pool. The Scratch must not be
// used afterwards.
func (s *Scratch) Close() {
	for i, bb := range s.bufs {
		PutScratchBuffer(bb)
		s.bufs[i] = nil
		s.held[i] = false
	}
}
