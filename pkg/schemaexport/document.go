package schemaexport

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formtemplate/pkg/model"
)

// DocumentOptions names the operation generated for a template.
type DocumentOptions struct {
	Title       string
	Version     string
	Path        string
	OperationID string
}

func (o DocumentOptions) withDefaults() DocumentOptions {
	if o.Title == "" {
		o.Title = "Form template"
	}
	if o.Version == "" {
		o.Version = "1.0.0"
	}
	if o.Path == "" {
		o.Path = "/submissions"
	}
	if o.OperationID == "" {
		o.OperationID = "submitForm"
	}
	return o
}

// Document wraps RequestSchema in a minimal OpenAPI 3 document with a single
// POST operation. Templates containing file fields use multipart/form-data,
// all others application/json.
func Document(tmpl model.Template, opts DocumentOptions) (*openapi3.T, error) {
	opts = opts.withDefaults()

	schema, err := RequestSchema(tmpl)
	if err != nil {
		return nil, err
	}

	mediaType := "application/json"
	if HasFiles(tmpl) {
		mediaType = "multipart/form-data"
	}
	body := openapi3.NewRequestBody().
		WithRequired(true).
		WithContent(openapi3.NewContentWithSchema(schema, []string{mediaType}))

	description := "Submission accepted"
	responses := openapi3.NewResponses(
		openapi3.WithStatus(201, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription(description),
		}),
	)

	operation := &openapi3.Operation{
		OperationID: opts.OperationID,
		Summary:     opts.Title,
		RequestBody: &openapi3.RequestBodyRef{Value: body},
		Responses:   responses,
	}

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   opts.Title,
			Version: opts.Version,
		},
		Paths: openapi3.NewPaths(openapi3.WithPath(opts.Path, &openapi3.PathItem{Post: operation})),
	}, nil
}
