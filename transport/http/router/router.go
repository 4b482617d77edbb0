package router

import (
	"estate/internal/handlers/agency"
	"estate/internal/handlers/apartment"
	"estate/internal/handlers/auth"
	"estate/internal/handlers/booking"
	"estate/internal/handlers/building"
	"estate/internal/handlers/customer"
	"estate/internal/handlers/order"
	"estate/internal/handlers/post"
	"estate/internal/handlers/stats"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth      auth.Handler
	Agency    agency.Handler
	Customer  customer.Handler
	Building  building.Handler
	Apartment apartment.Handler
	Booking   booking.Handler
	Order     order.Handler
	Post      post.Handler
	Stats     stats.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.Agency.Router(routerGroup)
		r.DomainHandlers.Customer.Router(routerGroup)
		r.DomainHandlers.Building.Router(routerGroup)
		r.DomainHandlers.Apartment.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Order.Router(routerGroup)
		r.DomainHandlers.Post.Router(routerGroup)
		r.DomainHandlers.Stats.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
