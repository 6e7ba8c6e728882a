// Package ui provides semantic text formatting for CLI output.
//
// Formatters render content (commands, paths, handles, errors) with colour
// when the terminal supports it. When NO_COLOR is set or the terminal cannot
// show colour, text decorations are used instead:
//
//	ui.Code.Sprint("trove repo setup")     // `trove repo setup`
//	ui.Handle.Sprint("00ff00ff00ff00ff")   // <00ff00ff00ff00ff>
//	ui.Collection.Sprint("pages")          // 'pages'
//	ui.Muted.Sprint("empty")               // (empty)
//
// Status lines start with one of the Mark constants rendered through
// Success, Error, Warning or Info.
package ui
