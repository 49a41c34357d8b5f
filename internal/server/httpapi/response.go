package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

// payload is a request body with a fixed set of top-level keys.
type payload interface {
	fieldNames() []string
}

// exactFields keeps the members of raw whose keys match names exactly and
// re-encodes them. encoding/json folds key case on its own, so
// {"ID":..} would otherwise fill the "id" field.
func exactFields(raw map[string]json.RawMessage, names []string) ([]byte, error) {
	kept := make(map[string]json.RawMessage, len(names))
	for _, name := range names {
		if v, ok := raw[name]; ok {
			kept[name] = v
		}
	}
	return json.Marshal(kept)
}

// decodeJSON reads r's body into v. The body must hold exactly one JSON
// object; keys are matched case-sensitively and unknown keys are ignored.
// Malformed JSON or trailing data is a 400, well-formed JSON of the wrong
// shape is a 422. It writes the error response itself and reports whether
// the handler may continue.
func (s *HTTPServer) decodeJSON(w http.ResponseWriter, r *http.Request, v payload) bool {
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))

	var raw map[string]json.RawMessage
	err := dec.Decode(&raw)
	if err == nil {
		if extra := dec.Decode(&struct{}{}); !errors.Is(extra, io.EOF) {
			writeText(w, http.StatusBadRequest, "bad json: trailing data after the object")
			s.logger.Warn(r.Context(), "request body rejected", "error", "trailing data")
			return false
		}

		var body []byte
		if body, err = exactFields(raw, v.fieldNames()); err == nil {
			err = json.Unmarshal(body, v)
		}
	}
	if err == nil {
		return true
	}

	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &typeErr):
		writeText(w, http.StatusUnprocessableEntity, "invalid field "+typeErr.Field+": "+err.Error())
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		writeText(w, http.StatusBadRequest, "bad json: "+err.Error())
	default:
		writeText(w, http.StatusUnprocessableEntity, err.Error())
	}
	s.logger.Warn(r.Context(), "request body rejected", "error", err)
	return false
}
