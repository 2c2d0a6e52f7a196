// Package reference resolves mixed-format image references into their
// name and tag components.
//
// References come from directory layout, so "app", "app/builder" and
// "app:builder" all have to mean the same thing. Normalization rewrites
// every ":" into "/" (one rewrite per occurrence, so pathological input
// can't loop forever) and then reads the components off the path form.
package reference

import (
	"path"
	"strings"
)

// DefaultTag is assumed when a reference carries no tag component.
const DefaultTag = "latest"

// Split breaks an image reference into its name and tag.
//
// A bare word maps to (word, "latest"). For "a/b" the tag is the final
// segment and the name the one before it, so "registry/a/b" still
// yields ("a", "b"). Colon forms reduce to slash forms first:
// "a:b" parses exactly like "a/b".
//
// Split is total: any string produces some answer. A reference without
// a name segment ("/b") yields whatever dirname of a rootless path
// gives, which is accepted input ambiguity, not an error.
func Split(img string) (name, tag string) {
	s := img
	for i := strings.Count(s, ":"); i > 0 && strings.Contains(s, ":"); i-- {
		s = strings.Replace(s, ":", "/", 1)
	}
	if strings.Contains(s, "/") {
		return path.Base(path.Dir(s)), path.Base(s)
	}
	return s, DefaultTag
}

// Name returns the name component of an image reference.
func Name(img string) string {
	name, _ := Split(img)
	return name
}

// Tag returns the tag component of an image reference.
func Tag(img string) string {
	_, tag := Split(img)
	return tag
}

// Canonical reconstitutes a reference as "name:tag", optionally followed
// by extra space-separated tokens. Pure formatting, used when composing
// engine command lines.
func Canonical(img string, extra ...string) string {
	name, tag := Split(img)
	parts := append([]string{name + ":" + tag}, extra...)
	return strings.Join(parts, " ")
}
