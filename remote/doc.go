// Package remote executes inference calls against a GraphPipe model server.
//
// A Client encodes input tensors into one request buffer, hands it to a Transport, and
// decodes the reply into output tensors. The default transport is an HTTP POST of the
// raw buffer:
//
//	client, err := remote.New(remote.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	in, _ := tensor.FromNested([][]float32{{1, 2, 3}})
//	out, err := client.Execute(ctx, "http://127.0.0.1:9000", in)
//
// Every call is synchronous: one request, one response, no retries and no partial
// results. Transport failures are returned unchanged; errors reported by the server
// inside the response match errs.ErrServer and unwrap to *ServerError.
//
// A Client holds only immutable configuration and is safe for concurrent use.
package remote
