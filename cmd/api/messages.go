package main

import (
	"errors"
	"fmt"
	"net/http"

	"confirmflow/confirm"
	"confirmflow/credential"
	"confirmflow/order"
)

// failure is the user-facing rendering of an error.
type failure struct {
	Status int
	Code   string
	Title  string
	Detail string
}

// describe maps a lookup or form error to the message shown on the page. The
// messages tell the customer whether to retry, check the order number, or
// contact support.
func describe(err error, pedido string) failure {
	switch {
	case errors.Is(err, credential.ErrConfigMissing):
		return failure{
			Status: http.StatusServiceUnavailable,
			Code:   "config_missing",
			Title:  "No se configuraron las credenciales",
			Detail: "El servicio no puede consultar pedidos en este momento. Por favor contacte a soporte.",
		}
	case errors.Is(err, credential.ErrInvalidCredential):
		return failure{
			Status: http.StatusServiceUnavailable,
			Code:   "config_invalid",
			Title:  "Credenciales inválidas",
			Detail: "El servicio no puede consultar pedidos en este momento. Por favor contacte a soporte.",
		}
	case errors.Is(err, order.ErrBlankID):
		return failure{
			Status: http.StatusBadRequest,
			Code:   "order_blank",
			Title:  "Ingrese un número de pedido",
			Detail: "Use el enlace recibido o escriba el número, por ejemplo BORD-001.",
		}
	case errors.Is(err, order.ErrNotFound):
		return failure{
			Status: http.StatusNotFound,
			Code:   "order_not_found",
			Title:  fmt.Sprintf("Pedido %s no encontrado", pedido),
			Detail: "Verifique el número de pedido e intente nuevamente.",
		}
	case errors.Is(err, order.ErrSheetNotFound):
		return failure{
			Status: http.StatusBadGateway,
			Code:   "sheet_not_found",
			Title:  "Hoja de pedidos no encontrada",
			Detail: "La hoja de pedidos no está disponible. Por favor contacte a soporte.",
		}
	case errors.Is(err, order.ErrMalformedRow):
		return failure{
			Status: http.StatusBadGateway,
			Code:   "data_malformed",
			Title:  "Datos del pedido con formato inválido",
			Detail: "La información del pedido no se pudo leer. Por favor contacte a soporte.",
		}
	case errors.Is(err, order.ErrConnection):
		return failure{
			Status: http.StatusBadGateway,
			Code:   "connection_failed",
			Title:  "Error en conexión",
			Detail: "No se pudo conectar con la hoja de pedidos. Recargue la página para intentar de nuevo.",
		}
	case errors.Is(err, confirm.ErrInvalidToken):
		return failure{
			Status: http.StatusBadRequest,
			Code:   "form_expired",
			Title:  "El formulario expiró",
			Detail: "Recargue la página del pedido y envíe su respuesta nuevamente.",
		}
	default:
		return failure{
			Status: http.StatusInternalServerError,
			Code:   "internal_error",
			Title:  "No se pudo cargar la información del pedido",
			Detail: "Recargue la página para intentar de nuevo.",
		}
	}
}
