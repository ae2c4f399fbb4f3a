package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"cddiller-backend/config"
	"cddiller-backend/internal/delivery/http/middleware"
	"cddiller-backend/internal/delivery/http/response"
	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/auth"
)

type RouterDeps struct {
	AuthUC       domain.AuthUsecase
	UserUC       domain.UserUsecase
	DealerUC     domain.DealerUsecase
	StoreUC      domain.StoreUsecase
	ProductUC    domain.ProductUsecase
	OrderUC      domain.OrderUsecase
	ReturnUC     domain.ReturnUsecase
	InvoiceUC    domain.InvoiceUsecase
	ReportUC     domain.ReportUsecase
	TrashUC      domain.TrashUsecase
	JWKSProvider *auth.Provider
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// CORS must run before anything that can short-circuit the request
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL))
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimitMiddleware(
		middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))
	r.Use(middleware.CSRFMiddleware())
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	loginLimiter := middleware.RateLimitMiddleware(
		middleware.LoginRateLimitConfig(deps.Config.RateLimitLoginThreshold, window))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.AuthUC))
	{
		NewAuthHandler(v1, protected, deps.AuthUC, deps.Config, loginLimiter)
		NewUserHandler(protected, deps.UserUC)
		NewDealerHandler(protected, deps.DealerUC)
		NewStoreHandler(protected, deps.StoreUC)
		NewProductHandler(protected, deps.ProductUC)
		NewOrderHandler(protected, deps.OrderUC)
		NewReturnHandler(protected, deps.ReturnUC)
		NewInvoiceHandler(protected, deps.InvoiceUC)
		NewReportHandler(protected, deps.ReportUC)
		NewTrashHandler(protected, deps.TrashUC)
	}

	return r
}
