// Package reader loads a PDF held in memory and gives access to its
// objects, pages, text and image XObjects.
//
//	r, err := reader.Load(data)        // or reader.Open("document.pdf")
//	if err != nil {
//	    var bad *reader.MalformedDocumentError
//	    ...
//	}
//	for _, page := range r.Pages() {
//	    text, xobjects, err := r.ExtractText(page)
//	    images, err := r.PageImages(page, xobjects)
//	}
//
// # Loading
//
// [Load] reads the header, the cross-reference data and the page tree up
// front. Anything that prevents that, including encryption, is reported
// as a [MalformedDocumentError]. Broken cross-reference data is recovered
// by scanning the file for object headers, and an object that fails to
// parse later triggers the same repair once.
//
// # Object Resolution
//
//   - GetObject(objNum) loads and caches one object, including objects
//     stored in object streams
//   - Resolve(obj) follows indirect references until a direct object
//
// Undefined objects resolve to null. A reference cycle is an error rather
// than a hang.
//
// # Images
//
// [Reader.PageImages] builds [imagestream.ImageObject] values from image
// XObjects with every dictionary entry dereferenced, in Do order followed
// by natural name order.
package reader
