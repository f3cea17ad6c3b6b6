package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mariaquintana/insurecrm-backend/api/middleware"
	"github.com/mariaquintana/insurecrm-backend/api/responses"
	"github.com/mariaquintana/insurecrm-backend/api/validators"
	"github.com/mariaquintana/insurecrm-backend/internal/notifications"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
	pkgerrors "github.com/mariaquintana/insurecrm-backend/pkg/errors"
	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
)

func recipientFromContext(r *http.Request) (notifications.Recipient, error) {
	role, err := enums.ParseCreatorType(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return notifications.Recipient{}, pkgerrors.New(pkgerrors.CodeForbidden, "actor role required")
	}
	actorID, err := uuid.Parse(middleware.ActorIDFromContext(r.Context()))
	if err != nil {
		return notifications.Recipient{}, pkgerrors.New(pkgerrors.CodeForbidden, "actor identity required")
	}
	return notifications.Recipient{Type: role, ID: actorID}, nil
}

// ListNotifications returns the acting actor's notification feed.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification service unavailable"))
			return
		}

		recipient, err := recipientFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := notifications.ListParams{
			Recipient: recipient,
			Cursor:    strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("unreadOnly")); raw != "" {
			unreadOnly, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unreadOnly flag"))
				return
			}
			params.UnreadOnly = unreadOnly
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MarkNotificationRead marks a single notification as read for its recipient.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification service unavailable"))
			return
		}

		recipient, err := recipientFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "notificationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification id"))
			return
		}

		if err := svc.MarkRead(r.Context(), recipient, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "read"})
	}
}

// MarkAllNotificationsRead marks every unread notification for the actor.
func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification service unavailable"))
			return
		}

		recipient, err := recipientFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.MarkAllRead(r.Context(), recipient)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "read", "count": count})
	}
}
