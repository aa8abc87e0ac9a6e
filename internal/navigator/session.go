// SPDX-License-Identifier: Apache-2.0

package navigator

import (
	"time"
)

// Nav tells the enclosing menu what to do after a screen returns.
type Nav int

const (
	// Stay keeps the current menu open.
	Stay Nav = iota
	// Back leaves the current screen for its parent.
	Back
	// Root unwinds to the main menu.
	Root
	// Exit ends the program.
	Exit
)

func (n Nav) String() string {
	switch n {
	case Stay:
		return "stay"
	case Back:
		return "back"
	case Root:
		return "root"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}

// DoubleInterruptWindow is how close two interrupts must be to end the program.
const DoubleInterruptWindow = 2 * time.Second

// Session carries state that outlives a single screen.
type Session struct {
	lastInterruptAt time.Time
	now             func() time.Time
}

// NewSession creates a session. A nil clock uses time.Now.
func NewSession(now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{now: now}
}

// Interrupt records an interrupt and returns Exit if the previous one happened
// within DoubleInterruptWindow, otherwise Back.
func (s *Session) Interrupt() Nav {
	at := s.now()
	if !s.lastInterruptAt.IsZero() && at.Sub(s.lastInterruptAt) < DoubleInterruptWindow {
		return Exit
	}
	s.lastInterruptAt = at
	return Back
}
