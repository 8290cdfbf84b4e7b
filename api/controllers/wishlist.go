package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/attire-backend/api/responses"
	"github.com/angelmondragon/attire-backend/api/validators"
	"github.com/angelmondragon/attire-backend/internal/wishlist"
	"github.com/angelmondragon/attire-backend/pkg/logger"
	"github.com/angelmondragon/attire-backend/pkg/types"
)

func WishlistFetch(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("wishlist service"))
			return
		}
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.GetWishlist(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func WishlistAdd(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return wishlistMutation(svc, logg, func(svc wishlist.Service, r *http.Request, userID, productID uuid.UUID) ([]types.WishlistItem, error) {
		return svc.AddItem(r.Context(), userID, productID)
	})
}

func WishlistRemove(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return wishlistMutation(svc, logg, func(svc wishlist.Service, r *http.Request, userID, productID uuid.UUID) ([]types.WishlistItem, error) {
		return svc.RemoveItem(r.Context(), userID, productID)
	})
}

func wishlistMutation(svc wishlist.Service, logg *logger.Logger, op func(wishlist.Service, *http.Request, uuid.UUID, uuid.UUID) ([]types.WishlistItem, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("wishlist service"))
			return
		}
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := op(svc, r, userID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
