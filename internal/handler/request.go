package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/google/uuid"
)

// maxBodySize bounds request bodies. Questions are capped well below it.
const maxBodySize = 64 << 10

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Invalid(op, "Request body is too large")
		}
		return domain.Invalid(op, "Request body must be valid JSON")
	}
	return nil
}

// pathUUID parses the named path value as a UUID.
func pathUUID(r *http.Request, op, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.Invalid(op, "Invalid "+name)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter, returning def when it
// is absent.
func queryInt(r *http.Request, op, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Invalid(op, name+" must be an integer")
	}
	return n, nil
}
