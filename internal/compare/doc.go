// Package compare reports how two docsift documents differ.
//
// [Documents] walks both trees with go-cmp and returns one [Change] per
// differing leaf, addressed by its path ("$.skills[1].content"). Changed
// strings carry an inline character diff. [Unified] renders the classic
// line-based diff of two serialized documents instead. [Printer] writes
// either form, colored when the destination is a terminal.
package compare
