// Command mockwasm regenerates the tiny WASI modules under shim/testdata.
// The modules are hand-assembled so tests cover exact runtime behavior
// (clean exit, nonzero exit, stdio traffic, a busy loop) without shipping
// an interpreter build.
//
// Usage:
//
//	go run ./internal/tools/mockwasm shim/testdata
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

var wasiModule = []byte("wasi_snapshot_preview1")

const (
	secType   = 1
	secImport = 2
	secFunc   = 3
	secMemory = 5
	secExport = 7
	secCode   = 10
	secData   = 11
)

var (
	header   = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	typeVoid = []byte{0x60, 0x00, 0x00}                                     // () -> ()
	typeExit = []byte{0x60, 0x01, 0x7f, 0x00}                               // (i32) -> ()
	typeIO   = []byte{0x60, 0x04, 0x7f, 0x7f, 0x7f, 0x7f, 0x01, 0x7f}      // fd_read/fd_write shape
	expMem   = append(name([]byte("memory")), 0x02, 0x00)
)

func name(s []byte) []byte {
	return append([]byte{byte(len(s))}, s...)
}

// section encodes a single-byte-LEB sized section; all modules here stay
// well under the 128-byte section limit that requires.
func section(id byte, content []byte) []byte {
	if len(content) >= 128 {
		panic(fmt.Sprintf("section %d too large: %d", id, len(content)))
	}
	return append([]byte{id, byte(len(content))}, content...)
}

func funcBody(code []byte) []byte {
	b := append([]byte{0x00}, code...) // no locals
	b = append(b, 0x0b)
	return append([]byte{0x01, byte(len(b))}, b...)
}

func wasiImport(fn []byte, typeIdx byte) []byte {
	out := name(wasiModule)
	out = append(out, name(fn)...)
	return append(out, 0x00, typeIdx)
}

func expStart(funcIdx byte) []byte {
	return append(name([]byte("_start")), 0x00, funcIdx)
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// noop exports an empty _start.
func noop() []byte {
	return cat(header,
		section(secType, cat([]byte{0x01}, typeVoid)),
		section(secFunc, []byte{0x01, 0x00}),
		section(secExport, cat([]byte{0x01}, expStart(0))),
		section(secCode, funcBody(nil)),
	)
}

// exit3 calls proc_exit(3).
func exit3() []byte {
	return cat(header,
		section(secType, cat([]byte{0x02}, typeExit, typeVoid)),
		section(secImport, cat([]byte{0x01}, wasiImport([]byte("proc_exit"), 0))),
		section(secFunc, []byte{0x01, 0x01}),
		section(secExport, cat([]byte{0x01}, expStart(1))),
		section(secCode, funcBody([]byte{0x41, 0x03, 0x10, 0x00})),
	)
}

// loop spins forever; only context teardown stops it.
func loop() []byte {
	return cat(header,
		section(secType, cat([]byte{0x01}, typeVoid)),
		section(secFunc, []byte{0x01, 0x00}),
		section(secExport, cat([]byte{0x01}, expStart(0))),
		section(secCode, funcBody([]byte{0x03, 0x40, 0x0c, 0x00, 0x0b})),
	)
}

// hello writes "hello\n" to fd 1 via fd_write.
func hello() []byte {
	code := []byte{
		0x41, 0x00, 0x41, 0x10, 0x36, 0x02, 0x00, // iov.base = 16
		0x41, 0x04, 0x41, 0x06, 0x36, 0x02, 0x00, // iov.len = 6
		0x41, 0x01, 0x41, 0x00, 0x41, 0x01, 0x41, 0x18, 0x10, 0x00, 0x1a, // fd_write(1,0,1,24)
	}
	return cat(header,
		section(secType, cat([]byte{0x02}, typeIO, typeVoid)),
		section(secImport, cat([]byte{0x01}, wasiImport([]byte("fd_write"), 0))),
		section(secFunc, []byte{0x01, 0x01}),
		section(secMemory, []byte{0x01, 0x00, 0x01}),
		section(secExport, cat([]byte{0x02}, expStart(1), expMem)),
		section(secCode, funcBody(code)),
		section(secData, cat([]byte{0x01, 0x00, 0x41, 0x10, 0x0b, 0x06}, []byte("hello\n"))),
	)
}

// grow requests memory 16 pages at a time and traps once the runtime
// refuses, modeling an allocation burst that overruns the heap quota.
func grow() []byte {
	code := []byte{
		0x03, 0x40, // loop
		0x41, 0x10, // i32.const 16
		0x40, 0x00, // memory.grow
		0x41, 0x7f, // i32.const -1
		0x46,       // i32.eq
		0x04, 0x40, // if
		0x00,       // unreachable
		0x0b,       // end if
		0x0c, 0x00, // br 0
		0x0b, // end loop
	}
	return cat(header,
		section(secType, cat([]byte{0x01}, typeVoid)),
		section(secFunc, []byte{0x01, 0x00}),
		section(secMemory, []byte{0x01, 0x00, 0x01}),
		section(secExport, cat([]byte{0x01}, expStart(0))),
		section(secCode, funcBody(code)),
	)
}

// echo reads one chunk from fd 0 and writes it back to fd 1.
func echo() []byte {
	code := []byte{
		0x41, 0x00, 0x41, 0xc0, 0x00, 0x36, 0x02, 0x00, // iov0.base = 64
		0x41, 0x04, 0x41, 0x80, 0x08, 0x36, 0x02, 0x00, // iov0.len = 1024
		0x41, 0x00, 0x41, 0x00, 0x41, 0x01, 0x41, 0x08, 0x10, 0x00, 0x1a, // fd_read(0,0,1,8)
		0x41, 0x10, 0x41, 0xc0, 0x00, 0x36, 0x02, 0x00, // iov1.base = 64
		0x41, 0x14, 0x41, 0x08, 0x28, 0x02, 0x00, 0x36, 0x02, 0x00, // iov1.len = nread
		0x41, 0x01, 0x41, 0x10, 0x41, 0x01, 0x41, 0x0c, 0x10, 0x01, 0x1a, // fd_write(1,16,1,12)
	}
	return cat(header,
		section(secType, cat([]byte{0x02}, typeIO, typeVoid)),
		section(secImport, cat([]byte{0x02},
			wasiImport([]byte("fd_read"), 0),
			wasiImport([]byte("fd_write"), 0))),
		section(secFunc, []byte{0x01, 0x01}),
		section(secMemory, []byte{0x01, 0x00, 0x01}),
		section(secExport, cat([]byte{0x02}, expStart(2), expMem)),
		section(secCode, funcBody(code)),
	)
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <output-dir>\n", os.Args[0])
		os.Exit(1)
	}
	dir := os.Args[1]

	modules := map[string][]byte{
		"noop.wasm":  noop(),
		"exit3.wasm": exit3(),
		"loop.wasm":  loop(),
		"grow.wasm":  grow(),
		"hello.wasm": hello(),
		"cat.wasm":   echo(),
	}

	for fn, data := range modules {
		path := filepath.Join(dir, fn)
		if err := os.WriteFile(path, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d bytes)\n", path, len(data))
	}
}
