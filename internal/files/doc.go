// Package files provides file discovery for pipeline inputs.
//
// Discovery finds files matching a glob pattern in a directory relative to
// a base path and returns them sorted by path, so every stage processes
// inputs in a deterministic order.
//
//	discovery := files.NewDiscovery(paths.DataDir)
//	found, err := discovery.FindFilesByPattern("raw/piezometers", "*COMPENSADA.xlsx")
package files
