package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/battleship/internal/auth"
	"github.com/robalobadob/battleship/internal/game"
	"github.com/robalobadob/battleship/internal/service"
	"github.com/robalobadob/battleship/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps domain errors to status codes. Anything unrecognized is
// logged and reported as a 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fin *service.FinishedError
	switch {
	case errors.As(err, &fin):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message":   "The game is already over.",
			"game_over": true,
			"score":     fin.Game.Score,
		})
	case errors.Is(err, game.ErrGameOver):
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "The game is already over.", "game_over": true})
	case errors.Is(err, game.ErrOutOfBounds):
		writeMessage(w, http.StatusBadRequest, "Shot is outside the board.")
	case errors.Is(err, game.ErrDuplicateShot):
		writeMessage(w, http.StatusBadRequest, "You already fired at that position.")
	case errors.Is(err, service.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "You do not have access to this game.")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials.")
	case errors.Is(err, auth.ErrInvalidToken):
		writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
	case errors.Is(err, store.ErrUsernameTaken):
		writeValidation(w, map[string][]string{"username": {"has already been taken"}})
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
	}
}

func writeValidation(w http.ResponseWriter, fields map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"message": "Validation failed.",
		"errors":  fields,
	})
}

// newValidator extends the auth validator so field errors are keyed by
// their JSON names.
func newValidator() *validator.Validate {
	v := auth.NewValidator()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind decodes the JSON body into dst and validates it. On failure the
// response has been written and false is returned.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			writeValidation(w, map[string][]string{typeErr.Field: {"has the wrong type"}})
			return false
		}
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body.")
		return false
	}
	if n, ok := dst.(interface{ Normalize() }); ok {
		n.Normalize()
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, r, err)
			return false
		}
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
		}
		writeValidation(w, fields)
		return false
	}
	return true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Bool {
			return "must be accepted"
		}
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "eqfield":
		return "does not match"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "password":
		return "must contain upper and lower case letters and a digit"
	}
	return "is invalid"
}
