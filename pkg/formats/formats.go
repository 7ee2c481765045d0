// Package formats provides parsers for mesh source formats.
//
// Parsers return raw attribute streams and per-material fragments that
// feed mesh.Mesh directly. Compilation is left to the mesh package.
package formats
