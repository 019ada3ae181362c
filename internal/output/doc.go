// Package output moves document bytes in and out of docsift.
//
// [ReadInput] loads a source document from a file or from stdin ("-").
// Transformed documents are sent to a [Writer]: [StdoutWriter] for pipes and
// [FileWriter] for files, which replaces its target atomically so a watcher
// on the output never observes a half-written document.
package output
