package core

import (
	"bytes"
	"strings"
	"testing"
)

func TestValidReceipt(t *testing.T) {
	photo := EncodeReceipt("image/jpeg", bytes.Repeat([]byte{0xff, 0xd8, 0xff, 0xe0}, 5000))

	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"jpeg data url", photo, true},
		{"png data url", "data:image/png;base64,iVBORw0KGgo=", true},
		{"plain url", "https://example.com/nota.jpg", false},
		{"not an image", "data:text/plain;base64,aGFsbw==", false},
		{"not base64", "data:image/png;base64,@@@", false},
		{"missing base64 marker", "data:image/png,iVBORw0KGgo=", false},
		{"empty payload", "data:image/png;base64,", false},
		{"too long", "data:image/png;base64," + strings.Repeat("A", MaxReceiptLength), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidReceipt(tc.in); got != tc.want {
				t.Errorf("ValidReceipt = %v, want %v", got, tc.want)
			}
		})
	}

	if len(photo) < 20000 {
		t.Fatalf("expected a multi-KB receipt, got %d bytes", len(photo))
	}
}
