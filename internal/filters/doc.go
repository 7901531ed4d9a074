// Package filters implements the PDF stream decode filters used by the
// object store and by image stream resolution.
//
// Filters are identified by a closed [Kind] enumeration. A filter name read
// from a stream dictionary is mapped with [ParseKind], which accepts both
// the full and the abbreviated (inline image) spellings:
//
//	kind, err := filters.ParseKind("FlateDecode")
//	res, err := filters.Decode(kind, data, filters.Params{"Predictor": 12, "Columns": 4})
//
// Byte filters (ASCII85, ASCIIHex, Flate, RunLength, CCITTFax) transform
// their input. The image codec filters DCT and JPX are terminal: [Decode]
// returns their input unchanged with [Result.Passthrough] set, since the
// bytes already form a complete JPEG or JPEG 2000 file.
//
// Every decode is bounded by [Limits.MaxDecodedBytes].
package filters
