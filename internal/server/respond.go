package server

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/matzehuels/sheetcalc/pkg/calc"
	"github.com/matzehuels/sheetcalc/pkg/errors"
	"github.com/matzehuels/sheetcalc/pkg/sheet"
)

type errorBody struct {
	Error errorJSON `json:"error"`
}

type errorJSON struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// cellJSON is a cell as returned by the API. Value is a number, a string,
// or null for empty and errored cells; Error holds the formula error code.
type cellJSON struct {
	Name     string `json:"name"`
	Contents string `json:"contents"`
	Kind     string `json:"kind"`
	Value    any    `json:"value"`
	Error    string `json:"error,omitempty"`
}

type workbookJSON struct {
	ID      string     `json:"id"`
	Version string     `json:"version"`
	Cells   []cellJSON `json:"cells"`
}

func newCellJSON(name string, c sheet.Content, v calc.Value) cellJSON {
	out := cellJSON{Name: name, Contents: c.Raw(), Kind: c.Kind().String()}
	switch v.Kind {
	case calc.ValueNumber:
		if math.IsInf(v.Number, 0) || math.IsNaN(v.Number) {
			out.Value = v.String()
		} else {
			out.Value = v.Number
		}
	case calc.ValueText:
		out.Value = v.Text
	case calc.ValueError:
		out.Error = string(v.Err.Code)
	}
	return out
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidName, errors.ErrCodeInvalidFormula,
		errors.ErrCodeInvalidVariable, errors.ErrCodeRejectedVar, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidID, errors.ErrCodeMissingContent:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeWorkbookNotFound:
		return http.StatusNotFound
	case errors.ErrCodeCircular:
		return http.StatusConflict
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		msg = "internal error"
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorJSON{Code: code, Message: msg}})
}
