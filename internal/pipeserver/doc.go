// Package pipeserver runs the server side of the pipe pair.
//
// Start creates the pipes. Run then spawns one detached handler per
// SpawnInterval tick whether or not a client is waiting; the handlers queue
// on a shared lock so only one of them touches the pipes at a time. Shutdown
// removes the pipes and, unless a drain timeout is configured, leaves the
// remaining handlers to end with the process.
//
// Typical use:
//
//	srv := pipeserver.New(cfg, logger, metrics)
//	if err := srv.Start(); err != nil {
//		return err
//	}
//	_ = srv.Run(ctx) // returns once ctx is cancelled
//	return srv.Shutdown(context.Background())
package pipeserver
