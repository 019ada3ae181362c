// Package watch re-runs a docsift transformation whenever one of its input
// files changes. Events are collected into batches so that an editor's
// burst of writes, or a save touching both the document and the config
// file, results in a single run that knows every file involved.
package watch
