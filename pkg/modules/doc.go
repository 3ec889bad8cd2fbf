// Package modules groups the stock reconcile modules.
//
// Each subpackage provides a value to pass to reconcile.New:
//
//   - attributes: element attributes from Data.Ext["attrs"]
//   - class: class tokens from Data.Ext["class"]
//   - style: inline style from Data.Ext["style"], with delayed removal
//   - metrics: Prometheus counters for lifecycle transitions
//   - tracing: one OpenTelemetry span per reconcile cycle
//
// Content modules write through host.Attributer, so they need an adapter
// that implements it:
//
//	a := htmlhost.New()
//	p := reconcile.New([]reconcile.Module{
//	    attributes.New(a),
//	    class.New(a),
//	    style.New(a),
//	}, reconcile.WithAdapter(a))
package modules
