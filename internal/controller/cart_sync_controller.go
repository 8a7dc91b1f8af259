package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/alimikegami/fashion-store/cart-service/internal/service"
	"github.com/alimikegami/fashion-store/cart-service/pkg/contract"
	"github.com/alimikegami/fashion-store/cart-service/pkg/response"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	// any origin; the JWT in the query string authenticates the handshake
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type CartSyncController struct {
	service   service.CartService
	pingEvery time.Duration
}

// CreateCartSyncController registers GET /cart/ws. isLoggedIn must accept the
// token from the query string.
func CreateCartSyncController(e *echo.Group, service service.CartService, isLoggedIn echo.MiddlewareFunc) {
	c := CartSyncController{
		service:   service,
		pingEvery: pingInterval,
	}

	e.GET("/cart/ws", c.Sync, isLoggedIn)
}

// Sync streams the full cart to the client every time it changes, whichever
// device made the change.
func (c *CartSyncController) Sync(e echo.Context) error {
	userID, err := currentUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	ctx, cancel := context.WithCancel(e.Request().Context())
	defer cancel()

	updates, stop, err := c.service.WatchCart(ctx, userID)
	if err != nil {
		return writeError(e, "CartSync", err)
	}
	defer stop()

	conn, err := upgrader.Upgrade(e.Response(), e.Request(), nil)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "CartSync").Msg("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	// the read pump only notices the peer going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := c.write(conn, contract.CartSyncMessage{Type: contract.SyncConnected, Message: "Cart sync enabled"}); err != nil {
		return nil
	}

	ticker := time.NewTicker(c.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-updates:
			if !ok {
				return nil
			}

			msg := contract.CartSyncMessage{Type: contract.SyncCartUpdated}
			if payload == service.CartNotificationCleared {
				msg.Type = contract.SyncCartCleared
			}

			cart, err := c.service.GetCart(ctx, userID)
			if err != nil {
				log.Ctx(ctx).Error().Err(err).Str("component", "CartSync").Msg("failed to load cart")
				continue
			}
			msg.Cart = &cart

			if err := c.write(conn, msg); err != nil {
				log.Ctx(ctx).Debug().Err(err).Str("component", "CartSync").Msg("websocket write failed")
				return nil
			}
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *CartSyncController) write(conn *websocket.Conn, msg contract.CartSyncMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}
