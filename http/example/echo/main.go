/*
echo provides a toy example use of the req package,
echoing back the arguments each route parses from a request.

It focuses on:

(1) constructing a default Ranger;
(2) declaring schemas with schema.Map, schema.Struct, and schema.Reflect;
(3) binding arguments with ranger.UseArgs and a Binder's Middleware;
(4) and reading arguments from every location a request carries them in.
*/
package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/xy-planning-network/reqargs/http/middleware"
	"github.com/xy-planning-network/reqargs/http/req"
	"github.com/xy-planning-network/reqargs/http/req/schema"
	. "github.com/xy-planning-network/reqargs/http/resp"
	"github.com/xy-planning-network/reqargs/http/router"
	"github.com/xy-planning-network/reqargs/ranger"
)

// search is read from the query string into a struct.
type search struct {
	Query string   `json:"q" schema:"q" validate:"required"`
	Page  int      `json:"page" schema:"page,default:1" validate:"min=1"`
	Tags  []string `json:"tags,omitempty" schema:"tag"`
}

// point is described with a JSON Schema reflected from its fields.
type point struct {
	X int `json:"x" jsonschema:"minimum=0"`
	Y int `json:"y" jsonschema:"minimum=0"`
}

var (
	helloArgs = schema.NewMap(schema.String("name").Default("World").Rules("min=3"))
	multiArgs = schema.NewMap(schema.String("name").Multiple())
	fileArgs  = schema.NewMap(schema.Any("myfile").Required())
	pathArgs  = schema.NewMap(schema.String("name").Required(), schema.Int("value"))

	validatedArgs = schema.NewMap(schema.Int("value").Required()).WithValidator(func(args req.Args) error {
		if args["value"].(int) <= 42 {
			return errors.New("Invalid value.")
		}
		return nil
	})

	nestedArgs = schema.NewMap(
		schema.Any("name").Nested(schema.NewMap(schema.String("first"), schema.String("last"))),
	)
	nestedManyArgs = schema.NewMap(
		schema.Any("users").Nested(schema.NewMap(schema.Int("id"), schema.String("name"))).Multiple(),
	)

	errorArgs = schema.NewMap(schema.String("text").Validate(func(any) error {
		return errors.New("Invalid value.")
	}))
	error400Args = schema.NewMap(schema.String("text").Validate(func(any) error {
		return req.NewValidationError("", "Invalid value.").WithStatus(http.StatusBadRequest)
	}))

	searchArgs = schema.MustStruct[search]()
)

// RangerHandler wraps a configured *Ranger.
// The methods attached to it are the handlers the Router
// will direct requests to.
type RangerHandler struct {
	*ranger.Ranger
}

// echo responds with the arguments parsed from a request.
func (h *RangerHandler) echo(w http.ResponseWriter, r *http.Request, args req.Args) {
	if err := h.Json(w, r, Data(args)); err != nil {
		h.Err(w, r, err)
	}
}

// echoFile responds with the contents of the uploaded file.
func (h *RangerHandler) echoFile(w http.ResponseWriter, r *http.Request, args req.Args) {
	fh, ok := args["myfile"].(*multipart.FileHeader)
	if !ok {
		h.Err(w, r, fmt.Errorf("unexpected file type %T", args["myfile"]))
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.Err(w, r, err)
		return
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		h.Err(w, r, err)
		return
	}

	if err := h.Json(w, r, Data(map[string]string{"myfile": string(b)})); err != nil {
		h.Err(w, r, err)
	}
}

// echoKwargs responds with the arguments a Binder's Middleware stored in the request context.
func (h *RangerHandler) echoKwargs(w http.ResponseWriter, r *http.Request) {
	args, ok := req.ArgsFromContext[req.Args](r.Context())
	if !ok {
		h.Err(w, r, errors.New("no arguments in context"))
		return
	}

	h.echo(w, r, args)
}

// echoPoint responds with the point read from a JSON body.
func (h *RangerHandler) echoPoint(w http.ResponseWriter, r *http.Request, args req.Args) {
	h.echo(w, r, args)
}

// echoSearch responds with the search read from the query string.
func (h *RangerHandler) echoSearch(w http.ResponseWriter, r *http.Request, args search) {
	if err := h.Json(w, r, Data(args)); err != nil {
		h.Err(w, r, err)
	}
}

// routes registers every echo route on the Ranger's Router.
func (h *RangerHandler) routes() error {
	pointArgs, err := schema.Reflect(&point{})
	if err != nil {
		return err
	}

	rng := h.Ranger
	only := func(locs ...req.Location) req.BinderOptFn { return req.WithParseOpts(req.Locations(locs...)) }
	kwargs := []middleware.Adapter{ranger.NewBinder(rng, helloArgs).Middleware()}
	pathKwargs := []middleware.Adapter{ranger.NewBinder(rng, pathArgs, only(req.Path, req.Query)).Middleware()}

	rng.HandleRoutes([]router.Route{
		{Path: "/echo", Handler: ranger.UseArgs(rng, helloArgs, h.echo)},
		{Path: "/echo_query", Handler: ranger.UseArgs(rng, helloArgs, h.echo, only(req.Query))},
		{Path: "/echo_multi", Handler: ranger.UseArgs(rng, multiArgs, h.echo)},
		{Path: "/echo_headers", Handler: ranger.UseArgs(rng, helloArgs, h.echo, only(req.Headers))},
		{Path: "/echo_cookie", Handler: ranger.UseArgs(rng, helloArgs, h.echo, only(req.Cookies))},
		{Path: "/echo_file", Method: http.MethodPost, Handler: ranger.UseArgs(rng, fileArgs, h.echoFile, only(req.Files))},
		{Path: "/echo_use_args", Handler: ranger.UseArgs(rng, helloArgs, h.echo)},
		{Path: "/echo_use_args_validated", Handler: ranger.UseArgs(rng, validatedArgs, h.echo)},
		{Path: "/echo_use_args_with_path_param/{name}", Handler: ranger.UseArgs(rng, pathArgs, h.echo, only(req.Path, req.Query))},
		{Path: "/echo_use_kwargs", Handler: http.HandlerFunc(h.echoKwargs), Middlewares: kwargs},
		{Path: "/echo_use_kwargs_with_path_param/{name}", Handler: http.HandlerFunc(h.echoKwargs), Middlewares: pathKwargs},
		{Path: "/echo_nested", Method: http.MethodPost, Handler: ranger.UseArgs(rng, nestedArgs, h.echo, only(req.JSON))},
		{Path: "/echo_nested_many", Method: http.MethodPost, Handler: ranger.UseArgs(rng, nestedManyArgs, h.echo, only(req.JSON))},
		{Path: "/echo_point", Method: http.MethodPost, Handler: ranger.UseArgs(rng, pointArgs, h.echoPoint, only(req.JSON))},
		{Path: "/echo_search", Method: http.MethodGet, Handler: ranger.UseArgs(rng, searchArgs, h.echoSearch)},
		{Path: "/error", Handler: ranger.UseArgs(rng, errorArgs, h.echo)},
		{Path: "/error400", Handler: ranger.UseArgs(rng, error400Args, h.echo)},
	})

	return nil
}

func main() {
	rng, err := ranger.New()
	if err != nil {
		fmt.Println(err)
		return
	}

	h := &RangerHandler{Ranger: rng}
	if err := h.routes(); err != nil {
		fmt.Println(err)
		return
	}

	if err := rng.Guide(); err != nil {
		fmt.Println(err)
		return
	}
}
