package handlers

import (
	"errors"
	"net/http"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/utils"
)

// requestError carries a client-facing message for a 400.
type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func (e *requestError) Is(target error) bool { return target == common.ErrInvalidInput }

func badRequest(msg string) error { return &requestError{msg: msg} }

var statusByError = []struct {
	err    error
	status int
	msg    string
}{
	{common.ErrNotFound, http.StatusNotFound, "Not found"},
	{common.ErrGone, http.StatusGone, "Link expired or download limit reached"},
	{common.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{common.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{common.ErrRateLimited, http.StatusTooManyRequests, "Too many requests, please try again later"},
	{common.ErrConflict, http.StatusConflict, "Already exists"},
	{common.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "File too large"},
	{common.ErrMimeNotAllowed, http.StatusUnsupportedMediaType, "File type not allowed"},
	{common.ErrRangeNotSatisfiable, http.StatusRequestedRangeNotSatisfiable, "Range not satisfiable"},
	{common.ErrPathTraversal, http.StatusBadRequest, "Invalid path"},
	{common.ErrDangerousExtension, http.StatusBadRequest, "File type not allowed for security reasons"},
	{common.ErrDirectoryNotShareable, http.StatusBadRequest, "Cannot share directories, only files"},
	{common.ErrMaxDepth, http.StatusBadRequest, "Maximum directory depth exceeded"},
	{common.ErrIncompleteUpload, http.StatusBadRequest, "Upload is incomplete"},
	{common.ErrInvalidInput, http.StatusBadRequest, "Invalid input"},
}

// writeError maps err onto a status and an envelope. Unexpected errors are
// logged and answered with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		utils.Fail(w, http.StatusBadRequest, reqErr.msg)
		return
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		utils.Fail(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			utils.Fail(w, m.status, m.msg)
			return
		}
	}
	h.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	utils.Fail(w, http.StatusInternalServerError, common.ErrInternal.Error())
}
