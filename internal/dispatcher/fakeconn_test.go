package dispatcher

import "errors"

// fakeConn is an in-memory connection used to drive the dispatcher without
// a real socket. Requests are queued with push; replies sent via PutPacket
// are captured in Replies for assertion.
type fakeConn struct {
	connected bool
	requests  [][]byte
	Replies   []string
	haveBreak bool
	closed    int
}

func newFakeConn() *fakeConn {
	return &fakeConn{connected: true}
}

func (f *fakeConn) push(payload string) {
	f.requests = append(f.requests, []byte(payload))
}

func (f *fakeConn) IsConnected() bool { return f.connected }

func (f *fakeConn) Connect() error {
	f.connected = true
	return nil
}

func (f *fakeConn) Close() error {
	f.connected = false
	f.closed++
	return nil
}

func (f *fakeConn) HaveBreak() bool { return f.haveBreak }

func (f *fakeConn) ConsumeBreak() { f.haveBreak = false }

func (f *fakeConn) GetPacket() ([]byte, error) {
	if len(f.requests) == 0 {
		f.connected = false
		return nil, errors.New("fakeConn: no more queued requests")
	}
	p := f.requests[0]
	f.requests = f.requests[1:]
	return p, nil
}

func (f *fakeConn) PutPacket(payload []byte) error {
	f.Replies = append(f.Replies, string(payload))
	return nil
}

func (f *fakeConn) lastReply() string {
	if len(f.Replies) == 0 {
		return ""
	}
	return f.Replies[len(f.Replies)-1]
}
