package handlers

import (
	"context"
	"errors"

	"github.com/dmitrymomot/taskflow/core/worker"
)

type dataTransformPayload struct {
	Data   map[string]any    `json:"data"`
	Select *[]string         `json:"select"`
	Rename map[string]string `json:"rename"`
}

type dataTransformResult struct {
	Transformed map[string]any `json:"transformed"`
	FieldCount  int            `json:"field_count"`
}

// NewDataTransform returns the "data_transform" handler: it projects
// the payload's data object through an optional field selection and an
// optional key renaming.
func NewDataTransform() worker.Handler {
	return worker.NewHandler("data_transform", func(ctx context.Context, p dataTransformPayload) (any, error) {
		if p.Data == nil {
			return nil, errors.New("payload.data must be an object")
		}

		out := make(map[string]any, len(p.Data))
		for k, v := range p.Data {
			out[k] = v
		}

		if p.Select != nil {
			selected := make(map[string]any, len(*p.Select))
			for _, k := range *p.Select {
				selected[k] = out[k]
			}
			out = selected
		}

		if len(p.Rename) > 0 {
			renamed := make(map[string]any, len(out))
			for k, v := range out {
				if nk, ok := p.Rename[k]; ok {
					renamed[nk] = v
				} else {
					renamed[k] = v
				}
			}
			out = renamed
		}

		return dataTransformResult{Transformed: out, FieldCount: len(out)}, nil
	})
}
