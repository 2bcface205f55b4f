// Package utils parses loosely typed request input (query flags, limits) and formats SQL
// timestamps the way they are stored in cells.
package utils
