// Package ui implements a read-only terminal browser for the song catalog using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [SongListView] : Browse and filter songs, newest first
//  2. [SectionView] : Read the selected song's sections in order, scrolled with a viewport
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Catalog reads run as commands, so the interface never blocks on the database.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
