package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swifthaul/swifthaul-backend/api/controllers"
	"github.com/swifthaul/swifthaul-backend/api/middleware"
	"github.com/swifthaul/swifthaul-backend/pkg/config"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
	"github.com/swifthaul/swifthaul-backend/pkg/redis"
)

// Services bundles the domain services the router wires into handlers.
type Services struct {
	Deliveries  controllers.DeliveriesService
	Bidding     controllers.BiddingService
	Partners    controllers.PartnersService
	Pricing     controllers.PricingService
	Commission  controllers.CommissionService
	Settlements controllers.SettlementsService
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	bidPolicy := middleware.NewRateLimitPolicy("bids", time.Minute, 30)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"database": dbPinger,
			"redis":    redisClient,
		}))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		requester := middleware.RequireRole(enums.ActorRoleRequester, logg)
		partner := middleware.RequireRole(enums.ActorRolePartner, logg)
		manager := middleware.RequireAnyRole(logg, enums.ActorRoleManager, enums.ActorRoleAdmin)
		admin := middleware.RequireRole(enums.ActorRoleAdmin, logg)
		partnerCtx := middleware.PartnerContext(logg)

		r.Route("/deliveries", func(r chi.Router) {
			r.With(requester).Post("/", controllers.CreateDelivery(svcs.Deliveries, logg))
			r.With(requester).Get("/", controllers.ListDeliveries(svcs.Deliveries, logg))
			r.With(requester).Get("/{deliveryID}", controllers.GetDelivery(svcs.Deliveries, logg))
			r.With(requester).Post("/{deliveryID}/cancel", controllers.CancelDelivery(svcs.Deliveries, logg))
			r.With(requester).Get("/{deliveryID}/bids", controllers.ListDeliveryBids(svcs.Bidding, logg))

			r.With(partner, partnerCtx).Post("/{deliveryID}/pickup", controllers.MarkDeliveryPickedUp(svcs.Deliveries, logg))
			r.With(partner, partnerCtx).Post("/{deliveryID}/transit", controllers.MarkDeliveryInTransit(svcs.Deliveries, logg))
			r.With(partner, partnerCtx).Post("/{deliveryID}/delivered", controllers.MarkDeliveryDelivered(svcs.Deliveries, logg))

			r.With(manager).Get("/{deliveryID}/settlement", controllers.GetDeliverySettlement(svcs.Settlements, logg))
		})

		r.Route("/bids", func(r chi.Router) {
			r.With(partner, partnerCtx, middleware.RateLimit(bidPolicy, redisClient, logg)).Post("/", controllers.SubmitBid(svcs.Bidding, logg))
			r.With(partner, partnerCtx).Post("/validate", controllers.ValidateBid(svcs.Bidding, logg))
			r.With(partner, partnerCtx).Get("/", controllers.ListMyBids(svcs.Bidding, logg))
			r.With(partner, partnerCtx).Post("/{bidID}/withdraw", controllers.WithdrawBid(svcs.Bidding, logg))

			r.With(requester).Post("/{bidID}/accept", controllers.AcceptBid(svcs.Bidding, logg))
			r.With(requester).Post("/{bidID}/reject", controllers.RejectBid(svcs.Bidding, logg))
		})

		r.Route("/partners", func(r chi.Router) {
			r.With(manager).Post("/", controllers.CreatePartner(svcs.Partners, logg))
			r.With(manager).Get("/{partnerID}", controllers.GetPartner(svcs.Partners, logg))

			r.Route("/me", func(r chi.Router) {
				r.Use(partner, partnerCtx)
				r.Get("/", controllers.GetMyPartner(svcs.Partners, logg))
				r.Put("/max-bid-rate", controllers.UpdateMaxBidRate(svcs.Partners, logg))
				r.Get("/rate-card", controllers.GetRateCard(svcs.Partners, logg))
				r.Put("/rate-card", controllers.UpdateRateCard(svcs.Partners, logg))
				r.Get("/rate-card/history", controllers.GetRateCardHistory(svcs.Partners, logg))
				r.Get("/service-area", controllers.GetServiceArea(svcs.Partners, logg))
				r.Put("/service-area", controllers.SetServiceArea(svcs.Partners, logg))
				r.Get("/service-area/match", controllers.CheckDirectionMatch(svcs.Partners, logg))
				r.Get("/deliveries", controllers.ListAssignedDeliveries(svcs.Deliveries, logg))
				r.Get("/deliveries/{deliveryID}", controllers.GetAssignedDelivery(svcs.Deliveries, logg))
				r.Get("/eligible-deliveries", controllers.ListEligibleDeliveries(svcs.Bidding, logg))
				r.Get("/settlements", controllers.ListMySettlements(svcs.Settlements, logg))
				r.Get("/earnings", controllers.GetMyEarnings(svcs.Settlements, logg))
				r.Post("/quote", controllers.QuoteMyRate(svcs.Pricing, logg))
			})
		})

		r.Route("/quotes", func(r chi.Router) {
			r.With(requester).Post("/compare", controllers.CompareQuotes(svcs.Pricing, logg))
		})

		r.Route("/settlements", func(r chi.Router) {
			r.With(manager).Post("/{settlementID}/paid", controllers.MarkSettlementPaid(svcs.Settlements, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(admin)
			r.Route("/managers/{managerID}/commission", func(r chi.Router) {
				r.Get("/", controllers.GetManagerCommission(svcs.Commission, logg))
				r.Put("/", controllers.SetManagerCommission(svcs.Commission, logg))
			})
			r.Post("/partners/{partnerID}/commission/preview", controllers.PreviewCommission(svcs.Commission, logg))
			r.Route("/platform-fee", func(r chi.Router) {
				r.Get("/", controllers.GetPlatformFee(svcs.Commission, logg))
				r.Put("/", controllers.SetPlatformFee(svcs.Commission, logg))
			})
		})
	})

	return r
}
