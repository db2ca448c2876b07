/*
Package middleware defines what a middleware is and a set of middlewares
suited to services parsing request arguments with the req package.

The available middlewares are:
- CORS
- InjectIPAddress
- LogRequest
- ReportPanic
- RequestID

A req.Binder's Middleware method also satisfies Adapter.

middleware does not provide a default chain.
Instead, the following can be copy-pasted:

	adpts := []middleware.Adapter{
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(log),
		middleware.ReportPanic(env),
		middleware.CORS(origins...),
	}
*/
package middleware
