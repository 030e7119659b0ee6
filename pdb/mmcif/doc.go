// Package mmcif reads files in mmcif / PDBx format and turns them into
// data blocks of categories. Then the categories can be put into a Table,
// where everything is addressed by tag, like "_atom_site.cartn_x".
//
// Notes about the format...
// A file is a set of data blocks, each starting with data_something.
// Within a block there are categories. A category is either a set of
// single values
//   _entry.id 101D
//   _cell.length_a 1
// or a loop, which has headers and then a table of values
//   loop_
//   _atom_site.id
//   _atom_site.type_symbol
//   1 C
//   2 N
// A question mark, ?, means a missing value.
// A dot, ., means not appropriate or deliberately left out.
// Values with spaces go in quotes, 'like this' or "like this". A quote
// only closes a value if it is followed by white space, so 'a'b' is one
// value. Longer text goes between lines starting with a semicolon
//   ;some text
//   more text
//   ;
// and keeps its newlines.
// Lines starting with # are comments.
//
// The reader makes one pass over the lines. It only keeps the categories
// it was asked for (or everything if it was asked for nothing). Values are
// collected in one flat list per category and cut into rows at the end,
// so single values and loops are handled the same way.
//
// There are no save frames, nested loops or fixed-width formats here.
package mmcif
