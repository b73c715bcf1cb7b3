package bossbar

import (
	"sync"

	"github.com/google/uuid"
	"github.com/witherbar/server/internal/net/packet"
)

type fakeViewer struct {
	id  uuid.UUID
	loc Location
	err error

	mu   sync.Mutex
	sent [][]byte
}

func newFakeViewer() *fakeViewer {
	return &fakeViewer{id: uuid.New()}
}

func (f *fakeViewer) UUID() uuid.UUID    { return f.id }
func (f *fakeViewer) Location() Location { return f.loc }

func (f *fakeViewer) Send(data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.sent = append(f.sent, data)
	f.mu.Unlock()
	return nil
}

// packetIDs returns the IDs of every packet sent so far.
func (f *fakeViewer) packetIDs() []int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int32, len(f.sent))
	for i, data := range f.sent {
		ids[i] = packet.NewReader(data).ID()
	}
	return ids
}

func (f *fakeViewer) count(id int32) int {
	n := 0
	for _, got := range f.packetIDs() {
		if got == id {
			n++
		}
	}
	return n
}

func (f *fakeViewer) last() *packet.Reader {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return packet.NewReader(f.sent[len(f.sent)-1])
}

func (f *fakeViewer) reset() {
	f.mu.Lock()
	f.sent = nil
	f.mu.Unlock()
}

type fakeDirectory struct {
	mu      sync.Mutex
	players map[uuid.UUID]*fakeViewer
}

func newFakeDirectory(viewers ...*fakeViewer) *fakeDirectory {
	d := &fakeDirectory{players: make(map[uuid.UUID]*fakeViewer)}
	for _, v := range viewers {
		d.players[v.id] = v
	}
	return d
}

func (d *fakeDirectory) Viewer(id uuid.UUID) (Viewer, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.players[id]
	if !ok {
		return nil, false
	}
	return v, true
}

func (d *fakeDirectory) remove(id uuid.UUID) {
	d.mu.Lock()
	delete(d.players, id)
	d.mu.Unlock()
}

type fakeTicks struct{ now int64 }

func (t *fakeTicks) CurrentTick() int64 { return t.now }
