package dashboard

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pkgpulse/pkgpulse/app/dashboard/controller"
	"github.com/pkgpulse/pkgpulse/app/dashboard/types"
	"github.com/pkgpulse/pkgpulse/pkg/utils"
)

// NewServer wires the router into the App's http.Server.
func NewServer(app *types.App) error {
	ctler := controller.NewController(app)
	router, err := ctler.NewRouter()
	if err != nil {
		return err
	}

	// use <ip>:<port> to bind to a specific interface or :<port> to bind to all interfaces
	addr := utils.Env("ADDR", ":3003")

	app.Server = &http.Server{Addr: addr, Handler: controller.WithCORS(router)}
	app.Logger.Info("Starting server", zap.String("addr", addr))

	return nil
}
