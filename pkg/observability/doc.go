/*
Package observability turns engine lifecycle hooks into logs and Prometheus
metrics.

	m := observability.NewMetrics(prometheus.NewRegistry())
	hooks := observability.Combine(m.Hooks(), observability.LogHooks(logger))
	a, err := arcty.New("bot.yaml", arcty.WithLifecycleHooks(hooks))
*/
package observability
