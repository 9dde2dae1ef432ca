// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"fmt"
	"strings"
)

// Namer hands out unique identifiers. Keywords and names already taken get
// a numeric suffix. Case-insensitive targets compare names folded to lower
// case.
type Namer struct {
	used     map[string]struct{}
	keywords map[string]struct{}
	fold     bool
	counter  *uint32
}

// NewNamer creates a namer that avoids the given keywords.
func NewNamer(keywords []string, caseInsensitive bool) *Namer {
	n := &Namer{
		used:     make(map[string]struct{}),
		keywords: make(map[string]struct{}, len(keywords)),
		fold:     caseInsensitive,
		counter:  new(uint32),
	}
	for _, k := range keywords {
		n.keywords[n.key(k)] = struct{}{}
	}
	return n
}

func (n *Namer) key(name string) string {
	if n.fold {
		return strings.ToLower(name)
	}
	return name
}

// Fork returns a namer for a nested scope. Names taken by the parent stay
// taken; names taken by the fork are invisible to the parent. The suffix
// counter is shared so suffixes stay unique across scopes.
func (n *Namer) Fork() *Namer {
	f := &Namer{
		used:     make(map[string]struct{}, len(n.used)),
		keywords: n.keywords,
		fold:     n.fold,
		counter:  n.counter,
	}
	for k := range n.used {
		f.used[k] = struct{}{}
	}
	return f
}

// Reserve marks a name as taken.
func (n *Namer) Reserve(names ...string) {
	for _, name := range names {
		n.used[n.key(name)] = struct{}{}
	}
}

// Taken reports whether a name is a keyword or already handed out.
func (n *Namer) Taken(name string) bool {
	k := n.key(name)
	if _, ok := n.keywords[k]; ok {
		return true
	}
	_, ok := n.used[k]
	return ok
}

// Call returns a unique identifier derived from base.
func (n *Namer) Call(base string) string {
	name := Sanitize(base)
	if !n.Taken(name) {
		n.used[n.key(name)] = struct{}{}
		return name
	}
	if isTempName(name) {
		name += "_"
	}
	for {
		*n.counter++
		candidate := fmt.Sprintf("%s_%d", name, *n.counter)
		if !n.Taken(candidate) {
			n.used[n.key(candidate)] = struct{}{}
			return candidate
		}
	}
}

// Exact takes a name verbatim when free and reports whether it did.
func (n *Namer) Exact(name string) bool {
	if n.Taken(name) {
		return false
	}
	n.used[n.key(name)] = struct{}{}
	return true
}

// reservedPrefixes are owned by generated helpers.
var reservedPrefixes = []string{"spv", "SPIRV_Cross", "gl_"}

// Sanitize turns a debug name into an identifier: characters outside
// [A-Za-z0-9_] become underscores, runs of underscores collapse, and a
// leading digit gets an underscore prefix. Names that could collide with
// generated identifiers are prefixed with an underscore.
func Sanitize(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	lastUnderscore := false
	for i, r := range name {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9' && i > 0)
		if r >= '0' && r <= '9' && i == 0 {
			b.WriteByte('_')
			ok = true
		}
		if !ok {
			r = '_'
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	if isTempName(out) {
		return out + "_"
	}
	for _, p := range reservedPrefixes {
		if strings.HasPrefix(out, p) {
			return "_" + out
		}
	}
	return out
}

// isTempName reports whether name has the shape of a generated temporary,
// an underscore followed by digits.
func isTempName(name string) bool {
	if len(name) < 2 || name[0] != '_' {
		return false
	}
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Temp takes the identifier of an unnamed entity. Sanitized names never
// have this shape, so the name is always free unless the ID was named
// before.
func (n *Namer) Temp(id uint32) string {
	name := fmt.Sprintf("_%d", id)
	n.used[n.key(name)] = struct{}{}
	return name
}
