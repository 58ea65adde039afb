// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for reviewing resolutions before a
// playlist is built:
//  1. [ResolvingView] : Watch queries resolve against the catalog
//  2. [ReviewView] : Inspect each query's selection, drop unwanted queries
//  3. [CandidateView] : Override the engine's pick with another candidate
//  4. [ConfirmView] : Confirm playlist creation
//  5. [AssembleView] : Monitor real-time progress updates
//  6. [ResultView] : Display the playlist URL and skipped entries
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the resolver and assembler,
// providing non-blocking status reporting during long operations.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, d, y/n, q)
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
