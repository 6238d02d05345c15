// Package app assembles the host process: configuration, logging, the
// script engine, the UI looper, the lifecycle bridge, the adaptive
// bootstrap and the remote evaluation server.
//
// The Manager runs bridged components through their lifecycle. Only one
// component is in the foreground at a time; the others are stopped in the
// background until focused again.
//
// Example Usage:
//
//	h, err := app.New(cfg, modules)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	launcher, err := h.Start()
//	...
//	h.Close(ctx)
package app
