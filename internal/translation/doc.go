// Package translation defines the uniform translate(text) capability used by
// every front end, the per-entry result type, the error taxonomy, and the
// local offline capability that shells out to an installed translation
// package. It also includes a per-language memo cache for batch operations.
package translation
