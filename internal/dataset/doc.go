// Package dataset reads training examples from files.
//
// Two formats are supported:
//   - Text: an input line followed by a target line, values separated by
//     whitespace. Blank lines and lines starting with '#' are skipped.
//   - CSV: one example per record, the first InputWidth columns are the
//     input and the remaining OutputWidth columns the target.
//
// Example:
//
//	examples, err := dataset.LoadFile("data/and.txt", topo)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Shape violations are reported as *ParseError values that unwrap to
// mlp.ErrInvalidInputShape or mlp.ErrShapeMismatch.
package dataset
