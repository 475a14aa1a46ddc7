// Package thttp serves HTTP APIs under a context.
//
// Server runs until the context passed to Run is closed and then shuts down
// gracefully, which fits process trees built with parallel.Run:
//
//	listener, err := tnet.Listen(addr)
//	if err != nil {
//	    return err
//	}
//	server := thttp.NewServer(listener, thttp.StandardMiddleware(httpapi.NewHandler(holder)))
//	return server.Run(ctx)
//
// Handlers respond with WriteJSON and WriteError, so successful and failed
// responses, including the 500 written by Recover, share one JSON shape.
//
// A panic in a handler under Recover stops the whole Server with the panic as
// the error of Run.
package thttp
