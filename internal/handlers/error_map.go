package handlers

import (
	"net/http"

	"github.com/zikrya/Showdrop/internal/apperror"
	"github.com/zikrya/Showdrop/internal/logger"
)

func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error, internalMessage string) {
	switch {
	case apperror.Is(err, apperror.KindNotFound):
		writeErrorResponse(w, http.StatusNotFound, err.Error())
	case apperror.Is(err, apperror.KindValidation):
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
	case apperror.Is(err, apperror.KindConflict):
		writeErrorResponse(w, http.StatusConflict, err.Error())
	case apperror.Is(err, apperror.KindUnauthorized):
		writeErrorResponse(w, http.StatusUnauthorized, err.Error())
	case apperror.Is(err, apperror.KindForbidden):
		writeErrorResponse(w, http.StatusForbidden, err.Error())
	case apperror.Is(err, apperror.KindAlreadyClaimed),
		apperror.Is(err, apperror.KindRateLimited),
		apperror.Is(err, apperror.KindPoolExhausted):
		// Отказы выдачи — ожидаемые ответы публичного эндпоинта, не сбои.
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		if log != nil {
			log.WithError(err).Error(internalMessage)
		}
		writeErrorResponse(w, http.StatusInternalServerError, internalMessage)
	}
}
