package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	ErrHerbNotFound = ErrorResponse{
		Status:  "error",
		Error:   "herb_not_found",
		Details: "Herb not found",
	}

	ErrHerbAlreadyExists = ErrorResponse{
		Status:  "error",
		Error:   "herb_already_exists",
		Details: "Herb with this slug already exists",
	}

	ErrImageNotFound = ErrorResponse{
		Status:  "error",
		Error:   "image_not_found",
		Details: "Image not found",
	}

	ErrRateLimitExceeded = ErrorResponse{
		Status:  "error",
		Error:   "rate_limit_exceeded",
		Details: "Too many requests, try again later",
	}
)
