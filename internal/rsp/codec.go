// Package rsp implements the wire-level framing of GDB's Remote Serial
// Protocol: checksums, the binary escape set, and the hex helpers used to
// move register and memory payloads across the wire. It is grounded on the
// wire functions of delve's pkg/proc/gdbserial connection (checksum,
// wiredecode/binarywiredecode, send/recv) rewritten for the stub side of
// the protocol, where the roles of sender and acknowledger are reversed.
package rsp

import "fmt"

// escapeXor is the value the protocol mandates for escaping characters in
// binary ('X') packets: the escaped byte is transmitted as 0x7d followed by
// (original-byte XOR escapeXor).
const escapeXor byte = 0x20

var escapedBytes = [256]bool{
	'$': true,
	'#': true,
	'}': true,
	'*': true,
}

var hexdigit = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}

// Checksum returns the low 8 bits of the sum of payload's bytes, as
// specified for the two-hex-digit trailer of an RSP packet.
func Checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return sum
}

// FramePacket wraps payload as "$<payload>#<cksum>".
func FramePacket(payload []byte) []byte {
	sum := Checksum(payload)
	out := make([]byte, 0, len(payload)+4)
	out = append(out, '$')
	out = append(out, payload...)
	out = append(out, '#', hexdigit[sum>>4], hexdigit[sum&0xf])
	return out
}

// ChecksumOK reports whether the two hex digits in cksum match payload's
// checksum.
func ChecksumOK(payload []byte, cksum []byte) bool {
	if len(cksum) != 2 {
		return false
	}
	hi, ok1 := hex2Nibble(cksum[0])
	lo, ok2 := hex2Nibble(cksum[1])
	if !ok1 || !ok2 {
		return false
	}
	return Checksum(payload) == hi<<4|lo
}

// Escape applies the RSP binary escape set ($, #, }, *) to data, as used
// for the stub's own binary output (if any is ever produced); data bytes
// outside the escape set pass through unchanged.
func Escape(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		if escapedBytes[b] {
			out = append(out, '}', b^escapeXor)
		} else {
			out = append(out, b)
		}
	}
	return out
}

// Unescape reverses Escape: every `}` introduces an escaped byte that must
// be XORed with escapeXor to recover the original. Used to decode GDB's 'X'
// binary-memory-write payloads.
func Unescape(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '}' && i+1 < len(data) {
			i++
			out = append(out, data[i]^escapeXor)
		} else {
			out = append(out, data[i])
		}
	}
	return out
}

func hex2Nibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// Char2Hex converts a single nibble value (0-15) to its hex character.
func Char2Hex(v byte) byte {
	return hexdigit[v&0xf]
}

// Hex2Char converts a single hex character to its nibble value. It returns
// -1 if c is not a valid hex digit.
func Hex2Char(c byte) int {
	v, ok := hex2Nibble(c)
	if !ok {
		return -1
	}
	return int(v)
}

// PackBytesHex hex-encodes data verbatim (two hex chars per byte, most
// significant nibble first) as used for memory-read replies.
func PackBytesHex(data []byte) string {
	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		out = append(out, Char2Hex(b>>4), Char2Hex(b&0xf))
	}
	return string(out)
}

// UnpackBytesHex is the inverse of PackBytesHex.
func UnpackBytesHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex string %q", s)
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi := Hex2Char(s[2*i])
		lo := Hex2Char(s[2*i+1])
		if hi < 0 || lo < 0 {
			return nil, fmt.Errorf("invalid hex digit in %q", s)
		}
		out[i] = byte(hi<<4) | byte(lo)
	}
	return out, nil
}

// PackStr hex-encodes an ASCII string for use as the payload of an
// 'O'-packet (console output) or a qRcmd reply.
func PackStr(s string) string {
	return PackBytesHex([]byte(s))
}

// PackHexStr is an alias of PackStr kept for parity with the historical
// naming of pack_hex_str; both hex-encode plain text for transmission.
func PackHexStr(s string) string {
	return PackStr(s)
}

// Val2Hex renders value as byteWidth bytes of little-endian hex (two hex
// characters per byte), as used for register payloads in 'g'/'G'/'p'/'P'.
func Val2Hex(value uint64, byteWidth int) string {
	out := make([]byte, 0, byteWidth*2)
	for i := 0; i < byteWidth; i++ {
		b := byte(value >> (8 * uint(i)))
		out = append(out, Char2Hex(b>>4), Char2Hex(b&0xf))
	}
	return string(out)
}

// Hex2Val parses a little-endian hex string (as produced by Val2Hex) back
// into a value.
func Hex2Val(s string) (uint64, error) {
	if len(s)%2 != 0 {
		return 0, fmt.Errorf("odd-length hex string %q", s)
	}
	var value uint64
	for i := 0; i*2 < len(s); i++ {
		hi := Hex2Char(s[2*i])
		lo := Hex2Char(s[2*i+1])
		if hi < 0 || lo < 0 {
			return 0, fmt.Errorf("invalid hex digit in %q", s)
		}
		value |= uint64(hi<<4|lo) << (8 * uint(i))
	}
	return value, nil
}
