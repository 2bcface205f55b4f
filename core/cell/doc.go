// Package cell models the scalar stored in a single grid cell and converts it to and from the
// declared column types of a table.
//
// A Value is a small tagged union (null, int, float or string). It is comparable, so it can be used
// directly as a map key for row indices.
//
// Coercion is total: ToCell and FromCell never fail. Unparseable input falls back to a string value.
package cell
