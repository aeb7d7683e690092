package handlers

import (
	"errors"
	"strconv"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/services"
	"github.com/NafisaTasnimR/UpNext/pkg/logger"
	"github.com/NafisaTasnimR/UpNext/pkg/response"
	"github.com/gin-gonic/gin"
)

// ValidationBody is the data attached to a rejected request.
type ValidationBody struct {
	Kind    lifecycle.Kind `json:"kind"`
	TaskIDs []uint         `json:"task_ids,omitempty"`
}

// toAppError maps service errors onto HTTP statuses. Forbidden carries a
// fixed message so it never says whether the target exists.
func toAppError(err error) *response.AppError {
	var ve *lifecycle.ValidationError
	switch {
	case errors.As(err, &ve):
		if ve.Kind == lifecycle.KindInvalidTransition || ve.Kind == lifecycle.KindUnfinishedDependencies {
			return response.NewConflict(ve.Error())
		}
		return response.NewBadRequest(ve.Error())
	case errors.Is(err, lifecycle.ErrForbidden):
		return response.NewForbidden("not allowed")
	case errors.Is(err, lifecycle.ErrNotFound):
		return response.NewNotFound(err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return response.NewUnauthorized(err.Error())
	case errors.Is(err, services.ErrUserSuspended):
		return response.NewForbidden(err.Error())
	}
	return nil
}

// fail writes err as a response. Errors that map to no client status are
// logged and returned as 500.
func fail(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr == nil {
		logger.Errorf("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
		response.ServerError(c, "internal server error")
		return
	}

	var ve *lifecycle.ValidationError
	if errors.As(err, &ve) {
		appErr = appErr.WithData(ValidationBody{Kind: ve.Kind, TaskIDs: ve.TaskIDs})
	}
	response.Error(c, appErr)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
