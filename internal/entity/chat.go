// internal/entity/chat.go
package entity

// ChatBacklog is how many chat lines a lobby retains. Older lines are
// silently dropped.
const ChatBacklog = 16

// ChatRing is a bounded, append-only chat log. The zero value is ready to
// use.
type ChatRing struct {
	lines []string
}

// Push appends a line, evicting the oldest one once the backlog is full.
func (r *ChatRing) Push(line string) {
	if len(r.lines) >= ChatBacklog {
		copy(r.lines, r.lines[1:])
		r.lines = r.lines[:ChatBacklog-1]
	}
	r.lines = append(r.lines, line)
}

// Lines returns the retained lines, oldest first.
func (r ChatRing) Lines() []string {
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Len returns the number of retained lines.
func (r ChatRing) Len() int { return len(r.lines) }

// Clone returns an independent copy of the ring.
func (r ChatRing) Clone() ChatRing {
	return ChatRing{lines: r.Lines()}
}
