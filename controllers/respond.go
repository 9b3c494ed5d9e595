package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go-shop/services"
	"go-shop/utils"

	"github.com/shopspring/decimal"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeError maps service error kinds onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		utils.LoggerFromCtx(r.Context()).Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = "Internal server error"
	}
	http.Error(w, msg, status)
}

func badParam(name string, err error) error {
	return fmt.Errorf("%w: invalid %s: %v", services.ErrValidation, name, err)
}

// intParam reads a required integer query parameter.
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", services.ErrValidation, name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badParam(name, err)
	}
	return n, nil
}

// decimalParam reads an optional decimal query parameter; nil when absent.
func decimalParam(r *http.Request, name string) (*decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, badParam(name, err)
	}
	return &d, nil
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid input: %v", services.ErrValidation, err)
	}
	return nil
}

var errMissingBounds = errors.New("min and max are required")
