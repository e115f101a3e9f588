// Package textutil provides small string helpers for turning chapter slugs
// into safe path segments and human-readable titles.
package textutil
