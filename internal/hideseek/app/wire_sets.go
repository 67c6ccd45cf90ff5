//go:build wireinject

package app

import "github.com/google/wire"

var hideSeekProviderSet = wire.NewSet(
	newHideSeekTelemetry,
	newHideSeekValkey,
	newHideSeekAdapter,
	newHideSeekValidator,
	newHideSeekStores,
	newHideSeekFacade,
	newHideSeekArchive,
	newHideSeekMetricsRegistry,
	newHideSeekCleanup,
	newHideSeekHTTPMux,
	newHideSeekHTTPServer,
	newHideSeekServerApp,
)
