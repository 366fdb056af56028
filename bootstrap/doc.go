// Package bootstrap provides application initialization and lifecycle management.
//
// Usage:
//
//	app, err := bootstrap.NewApp(bootstrap.WithRoutes(groups))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Connects to MongoDB and starts listening, then blocks until a signal
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
