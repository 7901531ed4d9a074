// Package model defines the values exchanged between extraction,
// translation and reassembly.
//
// [AnnotatedText] is the extracted document text. Every page opens with a
// boundary line produced by [PageMarker], pages without a text layer carry
// [NoTextPlaceholder], and pages where at least one image was detected end
// with the line produced by [ImageMarker]. The markers survive translation
// and [AnnotatedText.Blocks] recovers the page structure afterwards.
//
// [ImageInventory] lists the images that were recovered, ordered by page
// and then by the order the page uses them. Each [ExtractedImage] carries
// an [OutputFormat] tag telling consumers how to decode it.
//
// [Matrix] and [Point] are the geometry used by text extraction.
package model
