// Package server serves a rendered tree over HTTP and streams its changes
// to websocket clients.
//
// A Server renders an App into a wirehost.Host once at construction. From
// then on, state changes run as tasks on the runtime loop (Dispatch, Do);
// after each task the host is flushed and the resulting ops frame is sent
// to every connected client.
//
// # Routes
//
//	GET  /                current tree as an HTML page
//	GET  /ws              websocket: one init frame, then ops and control frames
//	GET  /healthz         JSON liveness report
//	GET  /metrics         Prometheus metrics
//	POST /snapshot        store the current HTML, reply with its key
//	GET  /snapshot/{key}  fetch a stored snapshot
//
// # Wire Sequence
//
// A client first receives an init frame holding the current HTML, the ops
// that rebuild it with server node IDs, and the sequence number of the next
// ops frame. Ops frames then arrive in sequence order with no gaps. A
// client that falls more than ClientBuffer frames behind is disconnected
// and must reconnect for a fresh init frame.
//
// The server pings every PingInterval and expects some frame from the
// client at least every two intervals. On shutdown each client receives a
// Close control frame with reason ServerShutdown.
//
// # Usage
//
//	srv, err := server.New(cfg, func(rt *reactive.Runtime) *vdom.VNode {
//	    return vdom.C(App)
//	})
//	if err != nil {
//	    return err
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	return srv.Run(ctx)
package server
