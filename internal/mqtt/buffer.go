package mqtt

// bufferedMsg is a serialized message waiting for the broker to come back.
type bufferedMsg struct {
	id       uint64
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog holds the most recent messages published while disconnected.
// When full, the oldest message is dropped. Callers synchronize access.
type backlog struct {
	slots   []bufferedMsg
	start   int // oldest message
	n       int
	next    uint64
	dropped int // since last takeDropped
}

func newBacklog(capacity int) *backlog {
	return &backlog{slots: make([]bufferedMsg, capacity)}
}

func (b *backlog) push(msg bufferedMsg) {
	msg.id = b.next
	b.next++
	if len(b.slots) == 0 {
		b.dropped++
		return
	}
	if b.n == len(b.slots) {
		b.slots[b.start] = msg
		b.start = (b.start + 1) % len(b.slots)
		b.dropped++
		return
	}
	b.slots[(b.start+b.n)%len(b.slots)] = msg
	b.n++
}

// front returns the oldest message without removing it.
func (b *backlog) front() (bufferedMsg, bool) {
	if b.n == 0 {
		return bufferedMsg{}, false
	}
	return b.slots[b.start], true
}

// pop removes the oldest message if it is still the one with the given id.
// It reports false when that message was already dropped to make room.
func (b *backlog) pop(id uint64) bool {
	if b.n == 0 || b.slots[b.start].id != id {
		return false
	}
	b.slots[b.start] = bufferedMsg{}
	b.start = (b.start + 1) % len(b.slots)
	b.n--
	return true
}

// takeDropped returns and resets the count of messages dropped for lack of room.
func (b *backlog) takeDropped() int {
	d := b.dropped
	b.dropped = 0
	return d
}

func (b *backlog) len() int {
	return b.n
}
