// Copyright © 2025 rrwm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: wm/color.go
// Summary: Border-color parsing (spec.md §4.7). A general color library
// (e.g. lucasb-eyer/go-colorful, present as an indirect teacher
// dependency) was considered and declined here — it operates on
// color.Color interfaces and perceptual/linear spaces, not the raw
// premultiplied-uint32-channel arithmetic the spec dictates verbatim; see
// DESIGN.md's wm/color.go ledger entry.

package wm

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cap153/rrwm/transport"
)

// ParseColor accepts "#RRGGBB" or "#RRGGBBAA", scales each byte by
// 0x01010101 to a 32-bit component, and premultiplies RGB by alpha using
// unsigned 64-bit math divided by 0xFFFFFFFF (spec.md §4.7).
func ParseColor(s string) (transport.Color, error) {
	s = strings.TrimPrefix(s, "#")
	var raw []byte
	switch len(s) {
	case 6, 8:
		b, err := hex.DecodeString(s)
		if err != nil {
			return transport.Color{}, fmt.Errorf("wm: invalid color %q: %w", s, err)
		}
		raw = b
	default:
		return transport.Color{}, fmt.Errorf("wm: invalid color %q: expected #RRGGBB or #RRGGBBAA", s)
	}

	a := byte(0xff)
	if len(raw) == 4 {
		a = raw[3]
	}

	const scale = 0x01010101
	r32 := uint32(raw[0]) * scale
	g32 := uint32(raw[1]) * scale
	b32 := uint32(raw[2]) * scale
	a32 := uint32(a) * scale

	premul := func(c uint32) uint32 {
		return uint32(uint64(c) * uint64(a32) / 0xFFFFFFFF)
	}

	return transport.Color{
		R: premul(r32),
		G: premul(g32),
		B: premul(b32),
		A: a32,
	}, nil
}
