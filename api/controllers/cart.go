package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/attire-backend/api/responses"
	"github.com/angelmondragon/attire-backend/api/validators"
	"github.com/angelmondragon/attire-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/attire-backend/pkg/errors"
	"github.com/angelmondragon/attire-backend/pkg/logger"
	"github.com/angelmondragon/attire-backend/pkg/types"
)

type cartAction func(r *http.Request, svc cart.Service, userID uuid.UUID) ([]types.CartLine, error)

// cartHandler resolves the caller and writes the resulting cart lines.
func cartHandler(svc cart.Service, logg *logger.Logger, action cartAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("cart service"))
			return
		}
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines, err := action(r, svc, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, logg, func(r *http.Request, svc cart.Service, userID uuid.UUID) ([]types.CartLine, error) {
		return svc.GetCart(r.Context(), userID)
	})
}

// CartAdd merges the line into the cart, incrementing an existing key.
func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, logg, func(r *http.Request, svc cart.Service, userID uuid.UUID) ([]types.CartLine, error) {
		var body types.CartMutation
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.AddItem(r.Context(), userID, body)
	})
}

// CartUpdate sets an absolute quantity on an existing line.
func CartUpdate(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, logg, func(r *http.Request, svc cart.Service, userID uuid.UUID) ([]types.CartLine, error) {
		var body types.CartMutation
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.UpdateQuantity(r.Context(), userID, body)
	})
}

func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, logg, func(r *http.Request, svc cart.Service, userID uuid.UUID) ([]types.CartLine, error) {
		var body types.LineKey
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		if body.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"productId": "is required"})
		}
		return svc.RemoveItem(r.Context(), userID, body)
	})
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, logg, func(r *http.Request, svc cart.Service, userID uuid.UUID) ([]types.CartLine, error) {
		if err := svc.Clear(r.Context(), userID); err != nil {
			return nil, err
		}
		return []types.CartLine{}, nil
	})
}
