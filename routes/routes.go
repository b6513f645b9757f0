package routes

import (
	"comart-backend/controllers"
	"comart-backend/middleware"
	"comart-backend/models"
	"comart-backend/repository"
	"comart-backend/services"

	"github.com/gin-gonic/gin"
)

// Controllers groups everything Register mounts onto the engine.
type Controllers struct {
	Users      *controllers.UserController
	Products   *controllers.ProductController
	Categories *controllers.CategoryController
	Carts      *controllers.CartController
	Orders     *controllers.OrderController
	Payments   *controllers.PaymentController
	Ratings    *controllers.RatingController
}

// Register mounts all API routes under /api. The payment webhook is the one
// mutating endpoint with no session; it authenticates with the gateway
// signature instead.
func Register(r *gin.Engine, ctrl Controllers, tokens *services.TokenService, users repository.UserRepository) {
	auth := middleware.Protect(tokens, users)
	adminOnly := middleware.Authorize(models.RoleAdmin)
	vendorOrAdmin := middleware.Authorize(models.RoleVendor, models.RoleAdmin)

	api := r.Group("/api")

	userRoutes := api.Group("/users")
	{
		userRoutes.POST("/register", ctrl.Users.Register)
		userRoutes.POST("/login", ctrl.Users.Login)
		userRoutes.POST("/logout", ctrl.Users.Logout)
		userRoutes.POST("/forgot-password", ctrl.Users.ForgotPassword)
		userRoutes.POST("/reset-password/:resettoken", ctrl.Users.ResetPassword)
		userRoutes.GET("/profile", auth, ctrl.Users.GetProfile)
		userRoutes.PUT("/profile", auth, ctrl.Users.UpdateProfile)
		userRoutes.GET("", auth, adminOnly, ctrl.Users.GetUsers)
		userRoutes.PUT("/:id/approve", auth, adminOnly, ctrl.Users.ApproveVendor)
	}

	productRoutes := api.Group("/products")
	{
		productRoutes.GET("", ctrl.Products.GetProducts)
		productRoutes.GET("/featured", ctrl.Products.GetFeaturedProducts)
		productRoutes.GET("/search/:query", ctrl.Products.SearchProducts)
		productRoutes.GET("/vendor/:vendorId", ctrl.Products.GetProductsByVendor)
		productRoutes.GET("/category/:category", ctrl.Products.GetProductsByCategory)
		productRoutes.GET("/:id", ctrl.Products.GetProduct)
		productRoutes.POST("", auth, vendorOrAdmin, ctrl.Products.AddProduct)
		productRoutes.PUT("/:id", auth, vendorOrAdmin, ctrl.Products.UpdateProduct)
		productRoutes.DELETE("/:id", auth, vendorOrAdmin, ctrl.Products.DeleteProduct)
		productRoutes.PUT("/:id/feature", auth, adminOnly, ctrl.Products.FeatureProduct)
		productRoutes.POST("/:id/photo-upload", auth, vendorOrAdmin, ctrl.Products.PresignPhotoUpload)
	}

	categoryRoutes := api.Group("/categories")
	{
		categoryRoutes.GET("", ctrl.Categories.GetCategories)
		categoryRoutes.POST("", auth, adminOnly, ctrl.Categories.AddCategory)
		categoryRoutes.PUT("/:id", auth, adminOnly, ctrl.Categories.UpdateCategory)
		categoryRoutes.DELETE("/:id", auth, adminOnly, ctrl.Categories.DeleteCategory)
	}

	cartRoutes := api.Group("/cart")
	{
		cartRoutes.POST("", auth, ctrl.Carts.AddCart)
		cartRoutes.GET("/:userId", auth, ctrl.Carts.GetCart)
	}

	orderRoutes := api.Group("/orders")
	{
		orderRoutes.POST("", auth, ctrl.Orders.CreateOrder)
		orderRoutes.GET("", auth, adminOnly, ctrl.Orders.GetOrders)
		orderRoutes.GET("/mine", auth, ctrl.Orders.GetMyOrders)
		orderRoutes.GET("/vendor/:vendorId", auth, vendorOrAdmin, ctrl.Orders.GetOrdersByVendor)
		// Gateway callback. Unauthenticated on purpose; the HMAC signature
		// over the body is the credential.
		orderRoutes.POST("/update", ctrl.Orders.PaymentWebhook)
	}

	paymentRoutes := api.Group("/payment")
	{
		paymentRoutes.POST("/initialize", auth, ctrl.Payments.InitializePayment)
		paymentRoutes.GET("/verify/:tx", auth, ctrl.Payments.VerifyPayment)
	}

	ratingRoutes := api.Group("/ratings")
	{
		ratingRoutes.POST("", auth, ctrl.Ratings.AddRating)
		ratingRoutes.GET("/:productId", ctrl.Ratings.GetRatings)
	}
}
