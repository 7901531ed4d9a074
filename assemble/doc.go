// Package assemble builds a PDF from translated annotated text and the
// images recovered from the source document.
//
// Each page block of the text starts a new A4 page. Lines are written
// top to bottom; a line carrying the image marker for page N is replaced
// by that page's images, 100mm wide and stacked below each other. Images
// whose marker did not survive translation are placed after the text of
// their page, so none are lost.
//
// The built-in Arial font covers Windows-1252. Text in other scripts needs
// a UTF-8 TrueType font supplied with [WithFont] or [WithFontFile].
package assemble
