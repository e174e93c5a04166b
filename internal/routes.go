package internal

import (
	"net/http"
	"varietyd/internal/controllers"
	"varietyd/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/current", http.HandlerFunc(apiController.GetCurrent))
	routers.Get("/year", http.HandlerFunc(apiController.GetYear))
	routers.Get("/years", http.HandlerFunc(apiController.GetYears))
	return routers
}
