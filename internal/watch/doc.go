// Package watch rebuilds the content tree when sources change and tells
// connected browsers to reload.
//
// A Watcher debounces filesystem events into Worker triggers. The Worker runs
// one reload at a time; triggers arriving during a reload collapse into a
// single follow-up run. Reloader performs the rebuild itself.
package watch
