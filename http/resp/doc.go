/*
The resp package provides a high-level API for responding to HTTP requests
with an easy way to configure the responses application-wide.

resp provides two main ways of responding to an HTTP request:
- rendering JSON data
- rendering the *req.HTTPError arising from parsing a request's arguments

Rendering data and errors share a pool of buffers,
so a failure to encode never leaves a partially written response.
*/
package resp
