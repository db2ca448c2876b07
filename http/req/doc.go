/*
Package req parses the arguments of an HTTP request and validates them against a Schema.

A Parser searches a request's Locations, such as its query params, form values or JSON body,
for every field a Schema declares.
Each field takes the value from the first Location holding one;
a field found nowhere is Missing, which is distinct from nil or an empty string.
Whether a field takes a single value or many is up to the Schema,
so ?tag=a&tag=b loads as two tags only when the field is declared to accept many.

Every failure, from a malformed JSON body to a value failing validation,
is converted by a single ErrorHandler.
DefaultErrorHandler produces an *HTTPError holding the status code to respond with
and the messages explaining what went wrong with each field.

Handlers take parsed arguments either as a function parameter, with UseArgs,
or from the request context, with UseKwargs and ArgsFromContext.

Package schema provides Schemas built from declared fields, struct types or JSON Schema documents.
*/
package req
