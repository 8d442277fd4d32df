package chat

import "sync"

// BacklogSize is how many recent lines are kept per channel.
const BacklogSize = 10

// Backlog keeps the last few "name: text" lines of every guild channel so a
// request can be answered with the surrounding conversation in view.
type Backlog struct {
	mu    sync.Mutex
	size  int
	lines map[string][]string
}

func NewBacklog(size int) *Backlog {
	if size <= 0 {
		size = BacklogSize
	}
	return &Backlog{size: size, lines: make(map[string][]string)}
}

func (b *Backlog) Add(channelID, line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	lines := append(b.lines[channelID], line)
	if len(lines) > b.size {
		lines = lines[len(lines)-b.size:]
	}
	b.lines[channelID] = lines
}

// Lines returns a copy of the channel's backlog, oldest first.
func (b *Backlog) Lines(channelID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines[channelID]...)
}
