// Package gantry embeds a QuickJS interpreter in a host process and boots
// a bundled application archive inside it.
//
// # Overview
//
// gantry compiles the application archive into the host binary, mounts it
// read-only in the guest's virtual filesystem, and runs its entry script
// with the host's standard streams proxied in. The guest runs as a WASM
// module with a capped heap and no capabilities beyond the streams and
// the archive mount.
//
// # Basic Usage
//
//	// Boot with the bundled archive and this process's streams.
//	s, _ := shim.New(os.Stdin.Fd(), os.Stdout.Fd())
//	defer s.Close()
//
//	// Run the entry script to completion.
//	if err := s.Execute(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Talking to the Payload Service
//
//	// Boot the service behind pipes and exchange framed requests.
//	b, _ := bridge.New()
//	defer b.Stop()
//
//	client := bridge.NewClient(b)
//	resp, _ := client.Call(ctx, []byte(`{"op":"ping"}`))
//
// See the [shim], [bridge], [engine/quickjs], and [payload] packages for
// detailed API documentation.
package gantry
