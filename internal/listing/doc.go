// Package listing renders the static index.html page that links every package
// published in a repository.
package listing
