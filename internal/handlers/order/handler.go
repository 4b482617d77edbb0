package order

import (
	"net/http"

	"estate/infras/otel"
	lifecycleService "estate/internal/domains/lifecycle/service"
	"estate/internal/domains/order/model/dto"
	"estate/internal/domains/order/service"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	"estate/shared/failure"
	"estate/shared/validator"
	"estate/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service   service.Order
	lifecycle lifecycleService.Lifecycle
	otel      otel.Otel
}

func New(service service.Order, lifecycle lifecycleService.Lifecycle, otel otel.Otel) Handler {
	return Handler{
		service:   service,
		lifecycle: lifecycle,
		otel:      otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/orders", func(routerGroup chi.Router) {
		routerGroup.Get("/my", handler.GetMyOrders)
		routerGroup.Get("/agency", handler.GetAgencyOrders)
		routerGroup.Get("/waiting", handler.GetWaitingOrders)
		routerGroup.Get("/{id}", handler.GetOrderByID)
		routerGroup.Get("/{id}/billing", handler.GetOrderBilling)
		routerGroup.Get("/{id}/remaining", handler.GetOrderRemaining)
		routerGroup.Patch("/{id}/status", handler.ChangeOrderStatus)
		routerGroup.Put("/{id}/image", handler.UpdateOrderImage)
		routerGroup.Delete("/booking/{id}", handler.ReverseOrder)
	})
}

// GetMyOrders retrieves all orders for the authenticated customer.
// @Summary Get my orders
// @Description Retrieve all orders of the authenticated customer.
// @Tags Order
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} dto.GetOrdersResponse "List of orders"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/orders/my [get]
// @Security BearerAuth
func (handler *Handler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyOrders")
	defer scope.End()

	customerID, ok := ctx.Value(constant.ContextKeyCustomerID).(string)
	if !ok || customerID == "" {
		log.Error().Msg("failed to get customer ID from context")
		response.WithError(w, failure.Unauthorized("unauthorized"))

		return
	}

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	orders, err := handler.service.GetByCustomer(ctx, customerID, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get customer orders")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Customer orders retrieved successfully")

	response.WithJSON(w, http.StatusOK, orders)
}

// GetAgencyOrders retrieves all orders for the authenticated agency.
// @Summary Get agency orders
// @Description Retrieve all orders of the authenticated agency.
// @Tags Order
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} dto.GetOrdersResponse "List of orders"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/orders/agency [get]
// @Security BearerAuth
func (handler *Handler) GetAgencyOrders(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAgencyOrders")
	defer scope.End()

	agencyID, ok := ctx.Value(constant.ContextKeyAgencyID).(string)
	if !ok || agencyID == "" {
		log.Error().Msg("failed to get agency ID from context")
		response.WithError(w, failure.Unauthorized("unauthorized"))

		return
	}

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	orders, err := handler.service.GetByAgency(ctx, agencyID, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get agency orders")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Agency orders retrieved successfully")

	response.WithJSON(w, http.StatusOK, orders)
}

// GetWaitingOrders retrieves all orders waiting for payment.
// @Summary Get waiting orders
// @Description Retrieve all orders in the Waiting status.
// @Tags Order
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} dto.GetOrdersResponse "List of orders"
// @Failure 500 {object} response.Error
// @Router /v1/orders/waiting [get]
// @Security BearerAuth
func (handler *Handler) GetWaitingOrders(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetWaitingOrders")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	orders, err := handler.service.GetWaiting(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get waiting orders")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Waiting orders retrieved successfully")

	response.WithJSON(w, http.StatusOK, orders)
}

// GetOrderByID retrieves an order by its ID.
// @Summary Get an order by ID
// @Description Retrieve an order by its unique identifier.
// @Tags Order
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.OrderResponse "Order details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/orders/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetOrderByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	order, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get order by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Order retrieved successfully")

	response.WithJSON(w, http.StatusOK, order)
}

// GetOrderBilling retrieves the billing view of an order.
// @Summary Get order billing
// @Description Retrieve the order joined with the completed booking behind it.
// @Tags Order
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.BillingResponse "Billing details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/orders/{id}/billing [get]
// @Security BearerAuth
func (handler *Handler) GetOrderBilling(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetOrderBilling")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	billing, err := handler.service.GetBilling(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get order billing")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Order billing retrieved successfully")

	response.WithJSON(w, http.StatusOK, billing)
}

// GetOrderRemaining retrieves the remaining amount of an order.
// @Summary Get order remaining amount
// @Description Retrieve the difference between the apartment price and the order total.
// @Tags Order
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.RemainingResponse "Remaining amount"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/orders/{id}/remaining [get]
// @Security BearerAuth
func (handler *Handler) GetOrderRemaining(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetOrderRemaining")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	remaining, err := handler.service.GetRemaining(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get order remaining amount")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Order remaining amount retrieved successfully")

	response.WithJSON(w, http.StatusOK, remaining)
}

// ChangeOrderStatus moves an order to another status.
// @Summary Change order status
// @Description Change the order status. Moving to Waiting refreshes the total from the apartment price.
// @Tags Order
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body dto.UpdateOrderStatusRequest true "Update Order Status Request"
// @Success 200 {object} response.Message "Order status changed successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/orders/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) ChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ChangeOrderStatus")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateOrderStatusRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.ChangeStatus(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to change order status")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Order status changed successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Order status changed successfully")
}

// UpdateOrderImage replaces the order payment image.
// @Summary Update order image
// @Description Upload a new payment receipt image for the order.
// @Tags Order
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Order ID"
// @Param file formData file true "Image file to upload"
// @Success 200 {object} response.Data[string] "Image updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/orders/{id}/image [put]
// @Security BearerAuth
func (handler *Handler) UpdateOrderImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateOrderImage")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(w, err)

		return
	}

	file, fileHeader, err := r.FormFile(constant.FormFile)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get file from form")

		response.WithError(w, err)

		return
	}
	defer file.Close()

	url, err := handler.service.UpdateImage(ctx, id, file, fileHeader)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update order image")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Order image updated successfully by user " + user)

	response.WithJSON(w, http.StatusOK, url)
}

// ReverseOrder undoes the sale behind a completed booking.
// @Summary Reverse an order
// @Description Delete the order of a completed booking, fail the booking and restore the apartment.
// @Tags Order
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Message "Order reversed successfully"
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/orders/booking/{id} [delete]
// @Security BearerAuth
func (handler *Handler) ReverseOrder(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ReverseOrder")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.lifecycle.ReverseOrder(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to reverse order")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Order reversed successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Order reversed successfully")
}
