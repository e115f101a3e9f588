// Package listing turns the landing page of a serialized feed into an ordered
// list of chapter references.
//
// Two sources are supported: the site's HTML "latest chapters" widget and a
// syndication feed (RSS/Atom). Entries that cannot be turned into a slug are
// dropped and reported; only an unreachable feed or a page without the
// listing container fails the whole resolve.
package listing
