package handler

import "github.com/gofiber/fiber/v2"

// Handlers bundles every HTTP handler the API serves.
type Handlers struct {
	Health  *HealthHandler
	User    *UserHandler
	Seller  *SellerHandler
	Product *ProductHandler
	Coupon  *CouponHandler
	Event   *EventHandler
	Cart    *CartHandler
	Order   *OrderHandler
}

// RegisterRoutes mounts the API on app. requireAuth guards every route that
// acts on behalf of the signed-in user. Static paths are registered before
// their ":id" siblings.
func RegisterRoutes(app *fiber.App, h Handlers, requireAuth fiber.Handler) {
	app.Get("/health", h.Health.Check)

	v1 := app.Group("/api/v1")

	v1.Post("/user", h.User.Signup)
	v1.Get("/user", h.User.Signin)
	v1.Get("/user/role", h.User.CheckRole)
	v1.Post("/auth/signin", h.User.Signin)

	v1.Post("/seller", requireAuth, h.Seller.Register)
	v1.Get("/seller", requireAuth, h.Seller.Get)

	product := v1.Group("/product")
	product.Get("/list", h.Product.List)
	product.Get("/store", h.Product.NamesByStore)
	product.Post("/", requireAuth, h.Product.Create)
	product.Get("/:id", h.Product.Get)
	product.Put("/:id", requireAuth, h.Product.Update)
	product.Delete("/:id", requireAuth, h.Product.Delete)
	product.Patch("/:id/remains", requireAuth, h.Product.AdjustRemains)

	coupon := v1.Group("/coupon")
	coupon.Post("/", requireAuth, h.Coupon.Create)
	coupon.Get("/user", requireAuth, h.Coupon.ListMine)
	coupon.Get("/seller", requireAuth, h.Coupon.ListBySeller)
	coupon.Get("/:id", h.Coupon.Get)

	event := v1.Group("/event")
	event.Get("/", h.Event.List)
	event.Get("/list", h.Event.Search)
	event.Get("/seller", requireAuth, h.Event.ListBySeller)
	event.Get("/seller/check", requireAuth, h.Event.CanCreate)
	event.Post("/", requireAuth, h.Event.Create)
	event.Get("/:id", h.Event.Get)
	event.Delete("/:id", requireAuth, h.Event.Cancel)
	event.Post("/:id/participate", requireAuth, h.Event.Participate)
	event.Post("/:id/draw", requireAuth, h.Event.Draw)

	cart := v1.Group("/cart", requireAuth)
	cart.Post("/product/add", h.Cart.AddItem)
	cart.Delete("/delete", h.Cart.Delete)
	cart.Patch("/update/cnt", h.Cart.UpdateCnt)
	cart.Get("/list", h.Cart.List)

	order := v1.Group("/order", requireAuth)
	order.Post("/", h.Order.Place)
	order.Get("/", h.Order.List)
	order.Get("/:id", h.Order.Get)
	order.Delete("/:id", h.Order.Cancel)
}
