package controller

import (
	"github.com/alimikegami/fashion-store/cart-service/internal/service"
	"github.com/alimikegami/fashion-store/cart-service/pkg/contract"
	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
	"github.com/alimikegami/fashion-store/cart-service/pkg/response"
	"github.com/alimikegami/fashion-store/cart-service/pkg/utils"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type CartController struct {
	service service.CartService
}

func CreateCartController(e *echo.Group, service service.CartService, isLoggedIn echo.MiddlewareFunc, rateLimit echo.MiddlewareFunc) {
	c := CartController{
		service: service,
	}

	e.GET("/cart", c.GetCart, isLoggedIn)
	e.POST("/cart", c.AddItem, isLoggedIn, rateLimit)
	e.PUT("/cart/:itemId", c.UpdateItem, isLoggedIn, rateLimit)
	e.DELETE("/cart/:itemId", c.RemoveItem, isLoggedIn, rateLimit)
	e.DELETE("/cart", c.Clear, isLoggedIn, rateLimit)
}

// currentUser returns the authenticated user id or ErrNotLoggedIn.
func currentUser(e echo.Context) (string, error) {
	userID, _ := utils.ExtractTokenUser(e)
	if userID == "" {
		return "", errs.ErrNotLoggedIn
	}
	return userID, nil
}

// writeError logs failures the client cannot act on before writing the envelope.
func writeError(e echo.Context, component string, err error) error {
	if errs.GetErrorStatusCode(err) >= 500 {
		log.Ctx(e.Request().Context()).Error().Err(err).Str("component", component).Msg("")
	}
	return response.WriteErrorResponse(e, err, nil)
}

func (c *CartController) GetCart(e echo.Context) error {
	userID, err := currentUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	cart, err := c.service.GetCart(e.Request().Context(), userID)
	if err != nil {
		return writeError(e, "GetCart", err)
	}

	return response.WriteSuccessResponse(e, "", &contract.CartResponse{Cart: cart})
}

func (c *CartController) AddItem(e echo.Context) error {
	userID, err := currentUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	payload := contract.AddCartItemRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Ctx(e.Request().Context()).Error().Err(err).Str("component", "AddItem").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	item, count, err := c.service.AddItem(e.Request().Context(), userID, payload)
	if err != nil {
		return writeError(e, "AddItem", err)
	}

	return response.WriteSuccessResponse(e, "Item added to cart", &contract.AddCartItemResponse{CartItem: item, CartCount: count})
}

func (c *CartController) UpdateItem(e echo.Context) error {
	userID, err := currentUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	payload := contract.UpdateCartItemRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Ctx(e.Request().Context()).Error().Err(err).Str("component", "UpdateItem").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	item, err := c.service.UpdateItem(e.Request().Context(), userID, e.Param("itemId"), payload)
	if err != nil {
		return writeError(e, "UpdateItem", err)
	}

	return response.WriteSuccessResponse(e, "Cart updated", &contract.UpdateCartItemResponse{CartItem: item})
}

func (c *CartController) RemoveItem(e echo.Context) error {
	userID, err := currentUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	count, err := c.service.RemoveItem(e.Request().Context(), userID, e.Param("itemId"))
	if err != nil {
		return writeError(e, "RemoveItem", err)
	}

	return response.WriteSuccessResponse(e, "Item removed from cart", &contract.RemoveCartItemResponse{CartCount: count})
}

func (c *CartController) Clear(e echo.Context) error {
	userID, err := currentUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	if err := c.service.Clear(e.Request().Context(), userID); err != nil {
		return writeError(e, "Clear", err)
	}

	return response.WriteSuccessResponse(e, "Cart cleared", nil)
}
