// Package merge implements the repository merge command: it prunes artifacts of
// deleted modules, copies freshly built artifacts into the published repository,
// merges the package indices, and regenerates index.json, index.min.json and
// index.html.
package merge
