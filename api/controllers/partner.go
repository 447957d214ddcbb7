package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sangreguerrer/Netology-Final/api/responses"
	"github.com/sangreguerrer/Netology-Final/api/validators"
	inventorysvc "github.com/sangreguerrer/Netology-Final/internal/inventory"
	orderssvc "github.com/sangreguerrer/Netology-Final/internal/orders"
	userssvc "github.com/sangreguerrer/Netology-Final/internal/users"
	pkgerrors "github.com/sangreguerrer/Netology-Final/pkg/errors"
	"github.com/sangreguerrer/Netology-Final/pkg/logger"
)

// PartnerState returns the caller's shop profile.
func PartnerState(svc userssvc.PartnerService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner service unavailable"))
			return
		}

		userID, err := authenticatedUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := svc.Shop(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shop)
	}
}

type partnerStateRequest struct {
	State *bool `json:"state" validate:"required"`
}

// PartnerSetState toggles whether the shop accepts new orders.
func PartnerSetState(svc userssvc.PartnerService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner service unavailable"))
			return
		}

		userID, err := authenticatedUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload partnerStateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := svc.SetState(r.Context(), userID, *payload.State)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shop)
	}
}

// PartnerOrders lists placed orders containing the caller's listings.
func PartnerOrders(partner userssvc.PartnerService, svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if partner == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner service unavailable"))
			return
		}

		userID, err := authenticatedUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := partner.Shop(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.PartnerOrders(r.Context(), shop.ID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

type stockLevelPayload struct {
	ProductInfoID uuid.UUID `json:"product_info_id" validate:"required"`
	Quantity      *int      `json:"quantity" validate:"required"`
}

type stockReloadRequest struct {
	Levels []stockLevelPayload `json:"levels" validate:"required,min=1,dive"`
}

// PartnerStockReload resets quantities for the caller's own listings. Levels
// naming foreign listings fail the whole batch.
func PartnerStockReload(partner userssvc.PartnerService, svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if partner == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		userID, err := authenticatedUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := partner.Shop(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockReloadRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		levels := make([]inventorysvc.StockLevel, len(payload.Levels))
		for i, level := range payload.Levels {
			levels[i] = inventorysvc.StockLevel{
				ProductInfoID: level.ProductInfoID,
				Quantity:      *level.Quantity,
			}
		}

		if err := svc.ReloadShopStock(r.Context(), shop.ID, levels); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int{"updated": len(levels)})
	}
}
