package rsp

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rvstub/gdbstub/internal/logflags"
	"github.com/sirupsen/logrus"
)

// maxTransmitAttempts bounds put_packet/get_packet retransmission, mirroring
// delve's ErrTooManyAttempts bound on the client side of the same wire
// format.
const maxTransmitAttempts = 10

// ErrTooManyAttempts is returned when a packet could not be sent or
// acknowledged after maxTransmitAttempts retries.
var ErrTooManyAttempts = errors.New("rsp: too many transmit attempts")

// breakByte is the out-of-band Ctrl-C byte GDB sends while the target runs.
const breakByte = 0x03

// Conn is the connection facade: it owns the accepted byte stream, frames
// and unframes packets over it, and latches the out-of-band break byte so
// the dispatcher can poll for it between simulation slices without
// consuming the next request packet.
type Conn struct {
	listener net.Listener
	conn     net.Conn
	rdr      *bufio.Reader

	connected bool
	haveBreak bool

	log *logrus.Entry
}

func newConn(listener net.Listener) *Conn {
	return &Conn{listener: listener, log: logflags.WireLogger()}
}

// New returns a Conn that accepts connections from listener. The listener
// itself (TCP accept/bind) is the out-of-scope transport; this facade only
// consumes the net.Listener/net.Conn interfaces.
func New(listener net.Listener) *Conn {
	return newConn(listener)
}

// Connect blocks until a client connects, replacing any previous
// connection. It returns an error only if the listener itself fails.
func (c *Conn) Connect() error {
	conn, err := c.listener.Accept()
	if err != nil {
		return err
	}
	c.conn = conn
	c.rdr = bufio.NewReader(conn)
	c.connected = true
	c.haveBreak = false
	c.log.Debugf("accepted connection from %s", conn.RemoteAddr())
	return nil
}

// Close closes the current connection. IsConnected becomes false.
func (c *Conn) Close() error {
	c.connected = false
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.rdr = nil
	return err
}

// IsConnected reports whether the facade currently has a live connection.
func (c *Conn) IsConnected() bool {
	return c.connected
}

// HaveBreak reports whether a break byte (0x03) has been observed outside
// any packet frame since the last time it was consumed. Callers should poll
// this between simulation slices; a non-blocking peek at the input stream
// is used so the call never blocks waiting for client data.
func (c *Conn) HaveBreak() bool {
	if c.haveBreak {
		return true
	}
	if !c.connected {
		return false
	}
	c.pollBreak()
	return c.haveBreak
}

// pollBreak does a best-effort non-blocking read of any bytes the client
// has already sent and, if one of them is the break byte, latches it.
// Bytes belonging to a legitimate packet are never consumed here: a real
// packet always begins with '$', and GDB never interleaves '$' with a
// pending break, so seeing anything other than the break byte just means
// no break is pending yet.
func (c *Conn) pollBreak() {
	deadline, ok := c.conn.(interface{ SetReadDeadline(time.Time) error })
	if !ok {
		return
	}
	_ = deadline.SetReadDeadline(time.Now().Add(time.Millisecond))
	defer deadline.SetReadDeadline(time.Time{})

	for {
		b, err := c.rdr.Peek(1)
		if err != nil || len(b) == 0 {
			return
		}
		if b[0] != breakByte {
			return
		}
		c.rdr.ReadByte()
		c.haveBreak = true
	}
}

// ConsumeBreak clears a latched break condition, called once the dispatcher
// has acted on it.
func (c *Conn) ConsumeBreak() {
	c.haveBreak = false
}

// GetPacket reads one full RSP request packet, skipping bytes until '$',
// accumulating the payload until '#', and verifying the two-hex checksum
// that follows. On a checksum mismatch it nacks and retries up to
// maxTransmitAttempts times; on success it acks. A transport error or EOF
// closes the connection and is returned to the caller so the dispatcher's
// outer loop can reconnect.
func (c *Conn) GetPacket() ([]byte, error) {
	attempt := 0
	for {
		payload, cksum, err := c.readOnePacket()
		if err != nil {
			c.Close()
			return nil, err
		}

		if ChecksumOK(payload, cksum) {
			c.sendAck('+')
			if logflags.Wire() {
				c.log.Debugf("-> $%s#%s", payload, cksum)
			}
			return unescapeFrame(payload), nil
		}

		if attempt >= maxTransmitAttempts {
			c.sendAck('+')
			c.Close()
			return nil, ErrTooManyAttempts
		}
		attempt++
		c.sendAck('-')
	}
}

func (c *Conn) readOnePacket() (payload, cksum []byte, err error) {
	for {
		b, err := c.rdr.ReadByte()
		if err != nil {
			return nil, nil, err
		}
		if b == '$' {
			break
		}
		if b == breakByte {
			c.haveBreak = true
		}
	}

	raw, err := c.rdr.ReadBytes('#')
	if err != nil {
		return nil, nil, err
	}
	payload = raw[:len(raw)-1]

	cksum = make([]byte, 2)
	if _, err := c.rdr.Read(cksum); err != nil {
		return nil, nil, err
	}
	return payload, cksum, nil
}

// unescapeFrame reverses the binary escape set inside an already-delimited
// packet payload (used by 'X' writes); non-binary payloads never contain
// the escape character so this is a no-op for them.
func unescapeFrame(payload []byte) []byte {
	return Unescape(payload)
}

// PutPacket frames payload, writes it, and awaits a single ack byte ('+')
// or nack ('-'); it retransmits on nack up to maxTransmitAttempts times
// before giving up and closing the connection.
func (c *Conn) PutPacket(payload []byte) error {
	framed := FramePacket(payload)
	for attempt := 0; ; attempt++ {
		if logflags.Wire() {
			c.log.Debugf("<- %s", framed)
		}
		if _, err := c.conn.Write(framed); err != nil {
			c.Close()
			return err
		}
		ok, err := c.readAck()
		if err != nil {
			c.Close()
			return err
		}
		if ok {
			return nil
		}
		if attempt >= maxTransmitAttempts {
			c.Close()
			return ErrTooManyAttempts
		}
	}
}

func (c *Conn) readAck() (bool, error) {
	b, err := c.rdr.ReadByte()
	if err != nil {
		return false, err
	}
	return b == '+', nil
}

func (c *Conn) sendAck(b byte) {
	if b != '+' && b != '-' {
		panic(fmt.Sprintf("rsp: sendAck(%c)", b))
	}
	c.conn.Write([]byte{b})
}
