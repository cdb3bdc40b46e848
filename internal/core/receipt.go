package core

import (
	"encoding/base64"
	"errors"
	"strings"
)

// MaxReceiptLength bounds the encoded receipt so that an expense still fits
// in one 1 MiB request body.
const MaxReceiptLength = 900 << 10

const receiptPrefix = "data:image/"

var ErrInvalidReceipt = errors.New("receipt must be a base64 image data URL")

// EncodeReceipt returns data as a data URL, e.g. data:image/png;base64,....
func EncodeReceipt(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ValidReceipt reports whether s is a base64 image data URL no longer than
// MaxReceiptLength.
func ValidReceipt(s string) bool {
	if len(s) > MaxReceiptLength {
		return false
	}
	rest, ok := strings.CutPrefix(s, receiptPrefix)
	if !ok {
		return false
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || payload == "" {
		return false
	}
	subtype, ok := strings.CutSuffix(meta, ";base64")
	if !ok || subtype == "" || strings.ContainsAny(subtype, ";/ ") {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(payload)
	return err == nil
}
