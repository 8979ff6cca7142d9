// Package handler services one request/response cycle on the pipe pair.
//
// Each Handle call walks the same sequence:
//
//	AcquireLock -> OpenPipes -> ReadRequest -> ParseRequest
//	            -> ApplyFilter -> WriteResponse -> close pipes, release lock
//
// The request pipe is closed as soon as the read returns, so it is never held
// open while the response is written.
//
// Any step may fail. Failures abort only the current request: whichever pipe
// ends were opened are closed, the lock is released, and the error is
// returned wrapped in one of ErrPipeOpen, ErrRead, ErrWrite or
// protocol.ErrMalformedRequest. A malformed request gets no response; the
// client sees its response pipe closed without data.
package handler
