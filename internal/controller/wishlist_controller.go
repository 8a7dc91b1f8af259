package controller

import (
	"github.com/alimikegami/fashion-store/cart-service/internal/service"
	"github.com/alimikegami/fashion-store/cart-service/pkg/contract"
	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
	"github.com/alimikegami/fashion-store/cart-service/pkg/response"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type WishlistController struct {
	service service.WishlistService
}

func CreateWishlistController(e *echo.Group, service service.WishlistService, isLoggedIn echo.MiddlewareFunc, rateLimit echo.MiddlewareFunc) {
	c := WishlistController{
		service: service,
	}

	e.GET("/wishlist", c.GetWishlist, isLoggedIn)
	e.POST("/wishlist", c.AddItem, isLoggedIn)
	e.DELETE("/wishlist/:productId", c.RemoveItem, isLoggedIn)
	e.DELETE("/wishlist", c.Clear, isLoggedIn)
	e.POST("/wishlist/:productId/move-to-cart", c.MoveToCart, isLoggedIn, rateLimit)
}

func (c *WishlistController) GetWishlist(e echo.Context) error {
	userID, err := currentUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	entries, err := c.service.GetWishlist(e.Request().Context(), userID)
	if err != nil {
		return writeError(e, "GetWishlist", err)
	}

	resp := contract.NewWishlistResponse(entries)
	return response.WriteSuccessResponse(e, "", &resp)
}

func (c *WishlistController) AddItem(e echo.Context) error {
	userID, err := currentUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	payload := contract.WishlistRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Ctx(e.Request().Context()).Error().Err(err).Str("component", "AddWishlistItem").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	entries, err := c.service.AddItem(e.Request().Context(), userID, payload)
	if err != nil {
		return writeError(e, "AddWishlistItem", err)
	}

	resp := contract.NewWishlistResponse(entries)
	return response.WriteSuccessResponse(e, "Added to wishlist", &resp)
}

func (c *WishlistController) RemoveItem(e echo.Context) error {
	userID, err := currentUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	entries, err := c.service.RemoveItem(e.Request().Context(), userID, e.Param("productId"))
	if err != nil {
		return writeError(e, "RemoveWishlistItem", err)
	}

	resp := contract.NewWishlistResponse(entries)
	return response.WriteSuccessResponse(e, "Removed from wishlist", &resp)
}

func (c *WishlistController) Clear(e echo.Context) error {
	userID, err := currentUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	if err := c.service.Clear(e.Request().Context(), userID); err != nil {
		return writeError(e, "ClearWishlist", err)
	}

	resp := contract.NewWishlistResponse(nil)
	return response.WriteSuccessResponse(e, "Wishlist cleared", &resp)
}

func (c *WishlistController) MoveToCart(e echo.Context) error {
	userID, err := currentUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	// the body is optional
	payload := contract.MoveToCartRequest{}
	if e.Request().ContentLength != 0 {
		if err := e.Bind(&payload); err != nil {
			log.Ctx(e.Request().Context()).Error().Err(err).Str("component", "MoveToCart").Msg("")
			return response.WriteErrorResponse(e, errs.ErrClient, nil)
		}
	}

	resp, err := c.service.MoveToCart(e.Request().Context(), userID, e.Param("productId"), payload)
	if err != nil {
		return writeError(e, "MoveToCart", err)
	}

	if resp.Wishlist == nil {
		resp.Wishlist = []contract.WishlistEntry{}
	}
	return response.WriteSuccessResponse(e, "Moved to cart", &resp)
}
