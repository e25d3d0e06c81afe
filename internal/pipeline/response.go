package pipeline

import (
	"context"
	"errors"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/optimizer"
	"github.com/simonhull/firebird-suite/plume/internal/parser"
)

// Response is the user-visible outcome of a request. Exactly one of the
// success payload and Error is set.
type Response struct {
	Success     bool                    `json:"success"`
	Code        string                  `json:"code,omitempty"`
	Map         string                  `json:"map,omitempty"`
	Imports     []ast.ImportDeclaration `json:"imports,omitempty"`
	Exports     []ast.ExportDeclaration `json:"exports,omitempty"`
	Framework   framework.Framework     `json:"framework,omitempty"`
	TypeScript  bool                    `json:"typescript,omitempty"`
	Component   string                  `json:"component,omitempty"`
	Suggestions []optimizer.Suggestion  `json:"suggestions,omitempty"`
	Cost        *optimizer.Cost         `json:"cost,omitempty"`
	Formatted   bool                    `json:"formatted,omitempty"`
	Error       *ErrorInfo              `json:"error,omitempty"`
}

// ErrorInfo describes a failed request.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Snippet string `json:"snippet,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// Error codes for failures that carry no code of their own.
const (
	CodeCancelled = "cancelled"
	CodeInternal  = "internal_error"
)

type coder interface {
	Code() string
}

// Describe maps an error to its envelope form.
func Describe(err error) *ErrorInfo {
	info := &ErrorInfo{Code: CodeInternal, Message: err.Error()}

	var c coder
	switch {
	case errors.As(err, &c):
		info.Code = c.Code()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		info.Code = CodeCancelled
	}

	var pe *parser.ParseError
	if errors.As(err, &pe) {
		info.Message = pe.Message
		info.Snippet = pe.Snippet
		info.Line = pe.Line
		info.Column = pe.Column
	}
	return info
}

// Success wraps a result.
func Success(res *Result) *Response {
	return &Response{
		Success:     true,
		Code:        res.Code,
		Map:         res.Map,
		Imports:     res.Imports,
		Exports:     res.Exports,
		Framework:   res.Framework,
		TypeScript:  res.TypeScript,
		Component:   res.ComponentName,
		Suggestions: res.Suggestions,
		Cost:        res.Cost,
		Formatted:   res.Formatted,
	}
}

// Failure wraps an error.
func Failure(err error) *Response {
	return &Response{Error: Describe(err)}
}

// Err returns the failure as an error, or nil for a successful response.
func (r *Response) Err() error {
	if r.Success || r.Error == nil {
		return nil
	}
	return &ResponseError{Info: *r.Error}
}

// ResponseError is a failed response turned back into an error.
type ResponseError struct {
	Info ErrorInfo
}

func (e *ResponseError) Error() string { return e.Info.Message }

// Code returns the envelope error code.
func (e *ResponseError) Code() string { return e.Info.Code }
