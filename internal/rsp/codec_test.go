package rsp

import (
	"bytes"
	"testing"
)

func TestChecksumRoundTrip(t *testing.T) {
	for _, payload := range [][]byte{
		[]byte(""),
		[]byte("?"),
		[]byte("g"),
		[]byte("qSupported"),
		{0, 1, 2, 255},
	} {
		framed := FramePacket(payload)
		if framed[0] != '$' || framed[len(framed)-3] != '#' {
			t.Fatalf("FramePacket(%q) malformed: %q", payload, framed)
		}
		cksum := framed[len(framed)-2:]
		if !ChecksumOK(payload, cksum) {
			t.Errorf("ChecksumOK failed on freshly framed payload %q", payload)
		}
	}
}

func TestChecksumOKRejectsBadDigits(t *testing.T) {
	if ChecksumOK([]byte("x"), []byte("zz")) {
		t.Error("expected ChecksumOK to reject non-hex checksum digits")
	}
	if ChecksumOK([]byte("x"), []byte("z")) {
		t.Error("expected ChecksumOK to reject wrong-length checksum")
	}
}

func TestEscapeUnescapeInverse(t *testing.T) {
	cases := [][]byte{
		[]byte("hello world"),
		{0x00, 0x01, 0x7f, 0xff},
		[]byte("a$b#c}d*e"),
	}
	for _, b := range cases {
		got := Unescape(Escape(b))
		if !bytes.Equal(got, b) {
			t.Errorf("Unescape(Escape(%v)) = %v, want %v", b, got, b)
		}
	}
}

func TestEscapeIdentityOnPlainBytes(t *testing.T) {
	plain := []byte("deadbeef1234")
	if got := Escape(plain); !bytes.Equal(got, plain) {
		t.Errorf("Escape(%q) = %q, want unchanged", plain, got)
	}
}

func TestVal2HexHex2ValInverse(t *testing.T) {
	for _, width := range []int{1, 2, 4, 8} {
		var v uint64 = 0x0102030405060708
		mask := uint64(1)<<(8*uint(width)) - 1
		if width == 8 {
			mask = ^uint64(0)
		}
		want := v & mask
		hexStr := Val2Hex(want, width)
		got, err := Hex2Val(hexStr)
		if err != nil {
			t.Fatalf("Hex2Val(%q) error: %v", hexStr, err)
		}
		if got != want {
			t.Errorf("width %d: Hex2Val(Val2Hex(%x)) = %x, want %x", width, want, got, want)
		}
	}
}

func TestVal2HexLittleEndian(t *testing.T) {
	if got := Val2Hex(0x1234, 2); got != "3412" {
		t.Errorf("Val2Hex(0x1234, 2) = %q, want %q", got, "3412")
	}
}

func TestPackBytesHexRoundTrip(t *testing.T) {
	data := []byte{0xde, 0xad, 0xbe, 0xef}
	packed := PackBytesHex(data)
	if packed != "deadbeef" {
		t.Errorf("PackBytesHex = %q, want %q", packed, "deadbeef")
	}
	back, err := UnpackBytesHex(packed)
	if err != nil {
		t.Fatalf("UnpackBytesHex error: %v", err)
	}
	if !bytes.Equal(back, data) {
		t.Errorf("UnpackBytesHex(PackBytesHex(%v)) = %v", data, back)
	}
}

func TestPackStr(t *testing.T) {
	if got := PackStr("ok"); got != "6f6b" {
		t.Errorf("PackStr(\"ok\") = %q, want %q", got, "6f6b")
	}
}

func TestHex2CharInvalid(t *testing.T) {
	if Hex2Char('g') != -1 {
		t.Error("expected Hex2Char('g') == -1")
	}
}
