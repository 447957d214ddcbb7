package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sangreguerrer/Netology-Final/api/responses"
	"github.com/sangreguerrer/Netology-Final/api/validators"
	checkoutsvc "github.com/sangreguerrer/Netology-Final/internal/checkout"
	pkgerrors "github.com/sangreguerrer/Netology-Final/pkg/errors"
	"github.com/sangreguerrer/Netology-Final/pkg/logger"
)

type placeOrderRequest struct {
	OrderID   uuid.UUID `json:"order_id" validate:"required"`
	ContactID uuid.UUID `json:"contact_id" validate:"required"`
}

// PlaceOrder converts the caller's basket into a placed order. Stock is
// debited atomically; any shortfall aborts the whole attempt.
func PlaceOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := authenticatedUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Place(r.Context(), checkoutsvc.PlaceInput{
			UserID:    userID,
			OrderID:   payload.OrderID,
			ContactID: payload.ContactID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}
