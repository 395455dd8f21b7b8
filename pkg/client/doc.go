/*
Package client talks to a unitgrid server: REST calls for project documents and a
server-sent event subscriber for live updates.

The subscriber reconnects after a fixed delay for as long as its context lives.
Every successful (re)connect is reported so callers can reload the full project,
since updates broadcast while disconnected are never replayed.

	c := client.New("http://localhost:8080", token)
	go c.Subscribe(ctx, projectID, client.StreamHandler{
		Connected: func() { reload() },
		Message:   func(msg domain.UpdateMessage) { sess.Reconcile(msg) },
	})
*/
package client
