package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pratik-mahalle/linkboost/internal/pkg/errors"
	"github.com/pratik-mahalle/linkboost/internal/pkg/logger"
	"github.com/pratik-mahalle/linkboost/internal/pkg/utils"
	"github.com/pratik-mahalle/linkboost/internal/pkg/validator"
)

const maxBodyBytes = 1 << 20

// decodeAndValidate reads a JSON body into dst and runs struct validation
func decodeAndValidate(r *http.Request, val *validator.Validator, dst interface{}) *errors.AppError {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errors.ValidationError("Invalid request body", nil)
	}
	if errs := val.Validate(dst); len(errs) > 0 {
		return errors.ValidationError("Validation failed", errs)
	}
	return nil
}

// respondFailure logs err with fields and writes it to the client.
// Client errors from the service pass through; everything else becomes
// a 500 carrying fallback.
func respondFailure(w http.ResponseWriter, log *logger.Logger, environment string, err error, fallback string, fields map[string]interface{}) {
	appErr, ok := errors.As(err)
	if !ok || appErr.StatusCode >= http.StatusInternalServerError {
		appErr = errors.Internal(fallback, err)
		log.WithFields(fields).WithError(err).Error(fallback)
	} else {
		log.WithFields(fields).WithError(err).Warn(appErr.Message)
	}
	utils.WriteError(w, errors.ForEnvironment(appErr, environment))
}
