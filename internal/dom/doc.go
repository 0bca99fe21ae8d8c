// Package dom is the document capability the page components are written against.
//
// [Document] and [Element] expose only the lookups and mutations the page needs:
// find by id, find by attribute or class, value and text writes, fragment insertion
// and htmx-style refresh. [Tree] implements both over a parsed HTML document
// (golang.org/x/net/html), serializing every mutation behind one mutex.
//
// Refresh follows the htmx attributes the player markup uses:
//
//	hx-get     source of the element's fragment
//	hx-select  "#id" of the node to keep from the response
//	hx-swap    innerHTML (default) or outerHTML
//
// Lookups that find nothing return false or an empty slice, never an error.
package dom
