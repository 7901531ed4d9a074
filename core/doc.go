// Package core provides low-level PDF parsing primitives and object types.
//
// The package implements the PDF object model ([Null], [Bool], [Int],
// [Real], [String], [Name], [Array], [Dict], [Stream] and [IndirectRef]),
// a [Lexer] and [Parser] that work on an in-memory copy of the file, and the
// cross-reference machinery needed to locate objects.
//
// # Cross-Reference Data
//
// [LoadXRef] follows startxref through classic xref tables, PDF 1.5 xref
// streams, hybrid files (/XRefStm) and /Prev chains of incremental updates.
// When that data is missing or inconsistent, [RebuildXRef] recovers an
// index by scanning for object headers.
//
// # Object Streams
//
// [ObjectStream] unpacks compressed objects stored in /ObjStm streams.
//
// # Stream Decoding
//
// [Stream.Decode] runs the stream's /Filter chain through the internal
// filters package. Image codec filters (DCTDecode, JPXDecode) end a chain
// and their payload is returned as is.
package core
