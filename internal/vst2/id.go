// SPDX-License-Identifier: MIT
package vst2

import "strings"

// ShellSeparator splits a shell module name from its sub-plugin ID, as in
// "WaveShell:TCR2".
const ShellSeparator = ':'

// IDToString renders a unique ID as its four ASCII characters.
func IDToString(id int32) string {
	var b [4]byte
	for i := range b {
		b[i] = byte(uint32(id) >> ((3 - i) * 8))
	}
	return string(b[:])
}

// IDFromString packs a four character ID. Any other length yields 0.
func IDFromString(s string) int32 {
	if len(s) != 4 {
		return 0
	}
	var id uint32
	for i := range 4 {
		id |= uint32(s[i]) << ((3 - i) * 8)
	}
	return int32(id)
}

// ParseShellName splits "name:ABCD" into the module name and sub-plugin ID.
// Names without a separator return the name unchanged and an ID of 0.
func ParseShellName(name string) (string, int32) {
	i := strings.LastIndexByte(name, ShellSeparator)
	if i < 0 {
		return name, 0
	}
	// Windows drive letters are not shell separators.
	if i == 1 && len(name) > 2 && (name[2] == '\\' || name[2] == '/') {
		return name, 0
	}
	sub := name[i+1:]
	if len(sub) > 4 {
		sub = sub[:4]
	}
	return name[:i], IDFromString(sub)
}
