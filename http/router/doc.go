/*
Package router registers the routes of an HTTP server.

[*Router] utilizes [mux.Router] for its implementation,
and so functions as thin wrapper around that package.
Path variables declared in a Route's Path, e.g., "/echo/{name}",
are what the req package reads from the path location by default.

A [Router] leverages a standardized data model - a [Route] -
when registering how requests should be routed.
A path and an HTTP method comprise a [Route].
An implementation of [http.Handler] is the function called when a request matches a Route,
often one built by a [req.Binder].
Before a request gets to a handler, though,
any middlewares added to the Route are called in the order they appear.

It is often the case that many routes for a web server share identical middleware stacks.
Thus, a [Router] provides conveniences for making a single call to register many logically associated Routes.
*/
package router
