// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"regexp"
	"strings"
)

// nonAlphanumeric matches every maximal run of characters outside [a-z0-9].
// Each run collapses to a single hyphen.
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
//
// The result contains only [a-z0-9-] and never starts or ends with a
// hyphen. Generate does not guarantee uniqueness — callers must check the
// target collection for an existing slug and surface a conflict.
func Generate(s string) string {
	result := strings.ToLower(s)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
