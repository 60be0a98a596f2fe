// Package serialization saves and loads network weight tensors.
//
// Two codecs are provided:
//
// TextCodec writes the flat (n, k, j) weight sequence with one connectivity
// layer per line and values separated by a single space. Values use the
// shortest representation that parses back to the same float64, so a
// save/load round trip is exact. Decoding only counts whitespace-separated
// values, so hand-edited files may wrap lines freely.
//
// BornCodec writes the binary .born container:
//
//	Format Structure (v2):
//	  [0x00: 4 bytes  Magic "BORN"]
//	  [0x04: 4 bytes  Version (uint32 LE)]
//	  [0x08: 4 bytes  Flags (uint32 LE)]
//	  [0x0C: 4 bytes  Reserved]
//	  [0x10: 8 bytes  Header size (uint64 LE)]
//	  [0x18: 8 bytes  Data size (uint64 LE)]
//	  [0x20: 32 bytes SHA-256 of the data section]
//	  [0x40: Header: JSON metadata, zero padded to 64 bytes]
//	  [Weight data: float64 LE, one tensor per connectivity layer]
//
// The header records the topology, so a .born file can be loaded without
// knowing the layer widths in advance.
//
// Example usage:
//
//	if err := serialization.SaveFile("weights.born", net.Weights(), serialization.WriteOptions{}); err != nil {
//	    log.Fatal(err)
//	}
//	w, err := serialization.LoadFile("weights.born", net.Topology())
package serialization
