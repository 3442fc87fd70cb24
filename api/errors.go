package api

import (
	"errors"
	"net/http"

	"github.com/purinelens/purinelens-backend/ark"
	"github.com/purinelens/purinelens-backend/model"
)

// classify maps an analyzer error to the code and message shown to users.
func classify(err error) (model.ErrorCode, string) {
	var (
		statusErr *ark.StatusError
		netErr    *ark.NetworkError
		schemaErr *ark.SchemaError
	)

	switch {
	case errors.Is(err, ark.ErrTimeout):
		return model.CodeNetworkError, "the model did not answer in time, try a smaller or compressed image"
	case errors.As(err, &netErr):
		return model.CodeNetworkError, "network request failed, check the connection or whether the model API is reachable"
	case errors.As(err, &statusErr):
		switch statusErr.StatusCode {
		case http.StatusUnauthorized:
			return model.CodeModelError, "invalid API key, check the ARK_API_KEY setting"
		case http.StatusForbidden:
			return model.CodeModelError, "access to the model API was denied, check the API key permissions"
		case http.StatusTooManyRequests:
			return model.CodeModelError, "too many requests to the model API, please retry later"
		}
		return model.CodeModelError, err.Error()
	case errors.Is(err, ark.ErrMalformedResponse),
		errors.Is(err, ark.ErrNoJSON),
		errors.Is(err, ark.ErrMalformedJSON),
		errors.As(err, &schemaErr):
		return model.CodeModelError, "the model returned malformed data, please retry"
	}

	if msg := err.Error(); msg != "" {
		return model.CodeModelError, msg
	}
	return model.CodeModelError, "analysis failed, please retry later"
}
