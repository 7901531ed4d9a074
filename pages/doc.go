// Package pages provides PDF page tree traversal and page access.
//
// [PageTree] flattens the catalog's /Pages hierarchy into document order,
// passing inheritable attributes (Resources, MediaBox, CropBox, Rotate)
// from every ancestor down to the leaves:
//
//	tree := pages.NewPageTree(pagesDict, resolver)
//	all, err := tree.Pages()
//
// Each [Page] knows its 1-based number and exposes its resources and
// decoded content stream data. All accessors dereference indirect
// references through the supplied [ObjectResolver].
package pages
