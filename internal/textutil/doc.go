// Package textutil provides text normalization and similarity helpers used
// for matching free-text item titles and platform names against cached
// catalog entries.
package textutil
