// Package assets provides the default WebAssembly template module and host
// JS shim docfind build patches/copies when the caller doesn't supply its
// own. In a production pipeline these would be produced once by an external
// toolchain (spec.md §1 treats both as external collaborators); this package
// ships a minimal, self-contained pair satisfying their documented contracts
// so `docfind build` works out of the box with nothing else on disk.
package assets

func section(id byte, content []byte) []byte {
	out := []byte{id}
	out = append(out, uleb32(uint32(len(content)))...)
	return append(out, content...)
}

func uleb32(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

// DefaultTemplate returns a minimal valid WebAssembly module satisfying the
// template contract in spec.md §6: exactly one memory (initial 1 page, no
// maximum), two mutable i32 globals named INDEX_BASE/INDEX_LEN initialized
// to zero, and an exported `search(i32, i32) -> i32` function. Its function
// body is a stub (returns 0); real query behavior requires linking against
// the compiled query engine, which is outside this repository's WebAssembly
// target per spec.md §1.
func DefaultTemplate() []byte {
	typeSection := section(1, []byte{
		0x01,             // 1 type
		0x60,             // func
		0x02, 0x7F, 0x7F, // params: i32, i32
		0x01, 0x7F, // results: i32
	})

	functionSection := section(3, []byte{
		0x01, // 1 function
		0x00, // type index 0
	})

	memorySection := section(5, []byte{
		0x01,       // 1 memory
		0x00, 0x01, // flags=no-max, min=1 page
	})

	globalSection := section(6, []byte{
		0x02, // 2 globals
		0x7F, 0x01, 0x41, 0x00, 0x0B, // i32, mutable, i32.const 0, end
		0x7F, 0x01, 0x41, 0x00, 0x0B,
	})

	exportEntry := func(name string, kind byte, idx byte) []byte {
		e := []byte{byte(len(name))}
		e = append(e, []byte(name)...)
		e = append(e, kind, idx)
		return e
	}
	exportContent := []byte{0x04}
	exportContent = append(exportContent, exportEntry("search", 0x00, 0x00)...)
	exportContent = append(exportContent, exportEntry("INDEX_BASE", 0x03, 0x00)...)
	exportContent = append(exportContent, exportEntry("INDEX_LEN", 0x03, 0x01)...)
	exportContent = append(exportContent, exportEntry("memory", 0x02, 0x00)...)
	exportSection := section(7, exportContent)

	codeSection := section(10, []byte{
		0x01,                   // 1 function body
		0x04,                   // body size
		0x00,                   // 0 local decls
		0x41, 0x00, // i32.const 0
		0x0B, // end
	})

	module := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00} // \0asm, version 1
	module = append(module, typeSection...)
	module = append(module, functionSection...)
	module = append(module, memorySection...)
	module = append(module, globalSection...)
	module = append(module, exportSection...)
	module = append(module, codeSection...)
	return module
}
