// Package imagestream turns the metadata and raw bytes of a PDF image
// XObject into a decoded payload.
//
// [Resolve] checks the declared colour space, then walks the filter chain
// outermost first. A chain ending in DCTDecode or JPXDecode yields the
// embedded JPEG or JPEG 2000 file unchanged ([PayloadEncoded]). Any other
// chain, including an empty one, yields raw samples that still need to be
// packed into an image container ([PayloadRaw]). Failures are reported as
// [PayloadFailed] with an [*ImageError] that names the page and resource.
//
// Only DeviceGray (1, 2, 4 or 8 bits) and DeviceRGB (8 bits) images are
// accepted. Indexed, CMYK, ICC-based and every other colour space fail with
// [*UnsupportedColorSpaceError].
//
// Example:
//
//	p := imagestream.Resolve(obj)
//	switch p.Kind {
//	case imagestream.PayloadEncoded:
//	    // p.Data is a complete JPEG or JPEG 2000 file
//	case imagestream.PayloadRaw:
//	    png, err := raster.Reconstruct(p.Data, obj.Width, obj.Height, p.ColorSpace.Mode, p.BitsPerComponent)
//	case imagestream.PayloadFailed:
//	    log.Debug().Err(p.Err).Msg("image skipped")
//	}
package imagestream
