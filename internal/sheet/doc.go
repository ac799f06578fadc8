// Package sheet holds the data model of a printed product sheet.
//
// A Sheet is a fixed set of named boxes placed by a Layout: the frame, a
// header row (product name, unit, price, sheet number) and a grid of tag
// boxes members write their ids into. Every sheet of a run shares the same
// Layout, so boxes are addressed by position and never by content.
//
// Sheets are stored as semicolon separated files named
// productId_sheetNumber.csv, where the product id is the slug of the product
// name. Render draws a sheet for review; it is not used by recognition.
package sheet
