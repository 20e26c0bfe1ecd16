package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// serve exposes the HTTP trigger. A GET on /run executes one full
// trading run synchronously and answers with the trade report, so the
// response only arrives after every opened position has been closed.
func serve(ctx context.Context, app *App) error {
	gin.SetMode(gin.ReleaseMode)
	router := newRouter(ctx, app)

	server := &http.Server{
		Addr:    app.Config.ListenAddress,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Log.Infof("http trigger listening on %s", app.Config.ListenAddress)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newRouter builds the trigger routes. Runs are bound to runCtx, the
// process lifetime, never to the request: a trailing loop can track a
// position for hours and must keep managing it after the HTTP caller
// disconnects.
func newRouter(runCtx context.Context, app *App) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "Bot is alive"})
	})

	router.GET("/run", func(c *gin.Context) {
		report, err := app.Trader.Run(runCtx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		trades := report.Trades()
		if len(trades) == 0 {
			c.JSON(http.StatusOK, gin.H{"message": report.Message})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "trades": trades})
	})

	router.GET("/orders", func(c *gin.Context) {
		orders, err := app.Storage.Orders()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
