// Package contentstream parses PDF content streams into operations.
//
//	ops, err := contentstream.NewParser(data).Parse()
//	for _, op := range ops {
//	    fmt.Println(op.Operator, op.Operands)
//	}
//
// Operands are core objects: numbers, strings, names, arrays and
// dictionaries. Inline images (BI ... ID ... EI) are reported as a single
// BI operation carrying the image dictionary; the sample data is skipped.
//
// Each Parser keeps its own operand stack, so parsers for different pages
// or documents never share state.
package contentstream
