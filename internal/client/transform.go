package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Transformation is a rewrite applied to a selected span.
type Transformation string

const (
	Shorten  Transformation = "shorten"
	Extend   Transformation = "extend"
	Rephrase Transformation = "rephrase"
)

// ParseTransformation validates a transformation name.
func ParseTransformation(s string) (Transformation, error) {
	switch t := Transformation(strings.ToLower(s)); t {
	case Shorten, Extend, Rephrase:
		return t, nil
	}
	return "", fmt.Errorf("unknown transformation %q (want shorten, extend or rephrase)", s)
}

type transformRequest struct {
	Text           string         `json:"text"`
	Transformation Transformation `json:"transformation"`
}

type transformResponse struct {
	TransformedText *string `json:"transformed_text"`
}

// Transformer rewrites text through the transform endpoint. It makes a
// single attempt per call and does no credit accounting.
type Transformer struct {
	s   *settings
	url string
}

// NewTransformer creates a Transformer for the service at baseURL.
func NewTransformer(baseURL, apiKey string, opts ...Option) (*Transformer, error) {
	s, err := newSettings(apiKey, DefaultTransformPath, DefaultTransformTimeout, opts)
	if err != nil {
		return nil, err
	}
	return &Transformer{s: s, url: strings.TrimRight(baseURL, "/") + s.path}, nil
}

// Transform returns text rewritten by kind.
func (t *Transformer) Transform(ctx context.Context, text string, kind Transformation) (out string, err error) {
	defer func() {
		outcomesTotal.WithLabelValues(endpointTransform, outcome(err)).Inc()
	}()

	if _, err := ParseTransformation(string(kind)); err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("nothing to transform")
	}

	data, err := postJSON(ctx, t.s, t.url, endpointTransform, transformRequest{Text: text, Transformation: kind})
	if err != nil {
		return "", err
	}

	var resp transformResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", &ValidationError{Reason: "decode body", Err: err}
	}
	if resp.TransformedText == nil {
		return "", &ValidationError{Reason: "missing transformed_text"}
	}
	return *resp.TransformedText, nil
}

// Func adapts Transform to a plain text-to-text function.
func (t *Transformer) Func(kind Transformation) func(ctx context.Context, text string) (string, error) {
	return func(ctx context.Context, text string) (string, error) {
		return t.Transform(ctx, text, kind)
	}
}
