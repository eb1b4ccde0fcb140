// Package render draws a diff pairing side by side on a tcell screen.
//
// Rows aligns the two sides of a diff result into screen rows: unchanged
// lines sit next to each other, removed lines sit next to the lines that
// replaced them, and folded unchanged runs collapse into a single row.
// Viewer keeps a screen in sync with a pair of editors.
package render
