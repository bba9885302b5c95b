package screening

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/cv-screener/internal/apperrors"
)

//go:embed schema.json
var requestSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(requestSchema)

// Request is a screening query read from a JSON file. It carries either a single
// Job or a list of Jobs screened against the same résumés.
type Request struct {
	Job         *Job     `mapstructure:"job" json:"job,omitempty"`
	Jobs        []Job    `mapstructure:"jobs" json:"jobs,omitempty"`
	ResumePaths []string `mapstructure:"resume_paths" json:"resume_paths"`
}

// Positions returns the jobs of the request in order.
func (r *Request) Positions() []Job {
	if r == nil {
		return nil
	}
	out := make([]Job, 0, len(r.Jobs)+1)
	if r.Job != nil {
		out = append(out, *r.Job)
	}
	return append(out, r.Jobs...)
}

// Multi reports whether the request uses the jobs list.
func (r *Request) Multi() bool {
	return r != nil && len(r.Jobs) > 0
}

// LoadRequest reads and validates a request file. Relative résumé paths are resolved
// against the directory of the request file.
func LoadRequest(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request %s: %w", path, err)
	}

	req, err := ParseRequest(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, p := range req.ResumePaths {
		if !filepath.IsAbs(p) {
			req.ResumePaths[i] = filepath.Join(base, p)
		}
	}
	return req, nil
}

// ParseRequest validates data against the request schema and decodes it.
func ParseRequest(data []byte) (*Request, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, apperrors.Validation("parse request", "request is not valid JSON: %v", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, apperrors.Validation("parse request", "%s", strings.Join(msgs, "; "))
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.Validation("parse request", "%v", err)
	}

	var req Request
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &req,
		ZeroFields:       true,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create request decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, apperrors.Validation("parse request", "%v", err)
	}

	return &req, nil
}
