//go:build wireinject
// +build wireinject

package di

import (
	"estate/config"
	"estate/infras/jwt"
	"estate/infras/kafka"
	"estate/infras/otel"
	"estate/infras/postgres"
	"estate/infras/redis"
	"estate/infras/s3"
	"estate/permissions"
	"estate/shared/cache"
	"estate/shared/imaging"
	"estate/transport/http"
	"estate/transport/http/middleware"
	"estate/transport/http/router"

	agencyRepository "estate/internal/domains/agency/repository"
	agencyService "estate/internal/domains/agency/service"
	apartmentRepository "estate/internal/domains/apartment/repository"
	apartmentService "estate/internal/domains/apartment/service"
	authService "estate/internal/domains/auth/service"
	bookingRepository "estate/internal/domains/booking/repository"
	bookingService "estate/internal/domains/booking/service"
	buildingRepository "estate/internal/domains/building/repository"
	buildingService "estate/internal/domains/building/service"
	customerRepository "estate/internal/domains/customer/repository"
	customerService "estate/internal/domains/customer/service"
	lifecycleService "estate/internal/domains/lifecycle/service"
	orderRepository "estate/internal/domains/order/repository"
	orderService "estate/internal/domains/order/service"
	postRepository "estate/internal/domains/post/repository"
	postService "estate/internal/domains/post/service"
	statsService "estate/internal/domains/stats/service"
	userRepository "estate/internal/domains/user/repository"

	agencyHandler "estate/internal/handlers/agency"
	apartmentHandler "estate/internal/handlers/apartment"
	authHandler "estate/internal/handlers/auth"
	bookingHandler "estate/internal/handlers/booking"
	buildingHandler "estate/internal/handlers/building"
	customerHandler "estate/internal/handlers/customer"
	orderHandler "estate/internal/handlers/order"
	postHandler "estate/internal/handlers/post"
	statsHandler "estate/internal/handlers/stats"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	wire.Bind(new(postgres.Transactor), new(*postgres.Connection)),
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	permissions.Get,
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	imaging.New,
)

var authDomain = wire.NewSet(
	userRepository.New,
	authService.New,
)

var agencyDomain = wire.NewSet(
	agencyRepository.New,
	agencyService.New,
)

var customerDomain = wire.NewSet(
	customerRepository.New,
	customerService.New,
)

var buildingDomain = wire.NewSet(
	buildingRepository.New,
	buildingService.New,
)

var apartmentDomain = wire.NewSet(
	apartmentRepository.New,
	apartmentService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var orderDomain = wire.NewSet(
	orderRepository.New,
	orderService.New,
)

var lifecycleDomain = wire.NewSet(
	lifecycleService.New,
)

var postDomain = wire.NewSet(
	postRepository.New,
	postService.New,
)

var statsDomain = wire.NewSet(
	statsService.New,
)

var domains = wire.NewSet(
	authDomain,
	agencyDomain,
	customerDomain,
	buildingDomain,
	apartmentDomain,
	bookingDomain,
	orderDomain,
	lifecycleDomain,
	postDomain,
	statsDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	agencyHandler.New,
	customerHandler.New,
	buildingHandler.New,
	apartmentHandler.New,
	bookingHandler.New,
	orderHandler.New,
	postHandler.New,
	statsHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
