package response

import (
	"net/http"

	"github.com/alimikegami/fashion-store/cart-service/pkg/contract"
	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
	"github.com/labstack/echo/v4"
)

func WriteSuccessResponse(c echo.Context, message string, data contract.Payload) error {
	if data == nil {
		data = &contract.Envelope{}
	}
	data.SetEnvelope(true, message)

	return c.JSON(http.StatusOK, data)
}

func WriteErrorResponse(c echo.Context, err error, errors interface{}) error {
	statusCode := errs.GetErrorStatusCode(err)
	resp := contract.ErrorResponse{}
	resp.SetEnvelope(false, err.Error())
	resp.Errors = errors

	// internal failures are logged by the caller; keep their detail off the wire
	if statusCode == http.StatusInternalServerError {
		resp.Message = errs.ErrInternalServer.Error()
	}

	return c.JSON(statusCode, resp)
}
