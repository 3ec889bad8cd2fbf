// Package remote streams reconcile cycles to clients as host mutation ops.
//
// A Recorder is a host adapter that keeps a local copy of the tree and
// records every mutation as a protocol.Op naming nodes by numeric IDs.
// A Session pairs a Recorder with a Patcher and a websocket connection:
// each Render patches the local copy and ships the recorded ops as
// FrameOps frames. On the other end, a Replayer applies the ops to any
// host adapter, producing a mirror of the server-side tree.
//
//	hub := remote.NewHub(func(api host.Attributer) []reconcile.Module {
//		return []reconcile.Module{attributes.New(api), class.New(api)}
//	}, logger)
//	hub.Broadcast(func() *vdom.VNode { return page(state) })
//	http.HandleFunc("/ws", hub.ServeWS)
//
// ID 1 always names the mount root. The first batch of a session carries
// FlagSnapshot since it builds the tree from an empty root.
package remote
