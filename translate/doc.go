// Package translate turns annotated document text into another language.
//
// A [Translator] handles one piece of text. [Gemini] calls the Gemini API
// and [Passthrough] returns its input, for offline runs and tests. An
// [Engine] splits a document into page-aligned chunks, translates them
// with a bounded number of concurrent calls and joins the results in
// document order.
//
// Page boundary lines and image markers must come back unchanged for the
// document to be reassembled; the Gemini prompt asks the model to keep
// them.
package translate
