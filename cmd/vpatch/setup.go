package main

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/vpatch/internal/config"
	"github.com/vango-dev/vpatch/internal/errors"
	"github.com/vango-dev/vpatch/pkg/host"
	"github.com/vango-dev/vpatch/pkg/host/htmlhost"
	"github.com/vango-dev/vpatch/pkg/host/memhost"
	"github.com/vango-dev/vpatch/pkg/modules/attributes"
	"github.com/vango-dev/vpatch/pkg/modules/class"
	"github.com/vango-dev/vpatch/pkg/modules/metrics"
	"github.com/vango-dev/vpatch/pkg/modules/style"
	"github.com/vango-dev/vpatch/pkg/modules/tracing"
	"github.com/vango-dev/vpatch/pkg/reconcile"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

// readTree decodes a tree file, reporting a missing file as E140.
func readTree(path string) (*vdom.VNode, error) {
	v, err := vdom.DecodeFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.New("E140").WithPath(path).Wrap(err)
	}
	return v, err
}

// hostTree is a host adapter with a container to mount trees into.
type hostTree struct {
	api  host.Adapter
	root host.Node
}

func newHostTree(name string) (*hostTree, error) {
	switch name {
	case config.HostHTML:
		root, err := htmlhost.Parse("<div></div>")
		if err != nil {
			return nil, err
		}
		return &hostTree{api: htmlhost.New(), root: root}, nil
	case config.HostMem:
		a := memhost.New()
		return &hostTree{api: a, root: a.NewRoot("div")}, nil
	}
	return nil, errors.New("E121").WithPath("host").WithDetail(fmt.Sprintf("Got %q.", name))
}

// markup returns the markup of everything mounted in the container.
func (h *hostTree) markup() string {
	if root, ok := h.root.(*memhost.Node); ok {
		var b strings.Builder
		for _, c := range root.Children {
			b.WriteString(c.String())
		}
		return b.String()
	}
	return htmlhost.RenderChildren(h.root)
}

// moduleSet builds the modules named in the config for each Patcher.
// Metrics collectors are registered once and shared by every Patcher.
type moduleSet struct {
	names   []string
	metrics *metrics.Module
}

func newModuleSet(cfg *config.Config, reg prometheus.Registerer) *moduleSet {
	s := &moduleSet{names: cfg.Modules}
	if cfg.HasModule("metrics") {
		s.metrics = metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithSubsystem(cfg.Metrics.Subsystem),
			metrics.WithRegistry(reg),
		)
	}
	return s
}

// build returns fresh modules in configured order. It matches
// remote.ModuleFactory.
func (s *moduleSet) build(api host.Attributer) []reconcile.Module {
	mods := make([]reconcile.Module, 0, len(s.names))
	for _, name := range s.names {
		switch name {
		case "attributes":
			mods = append(mods, attributes.New(api))
		case "class":
			mods = append(mods, class.New(api))
		case "style":
			mods = append(mods, style.New(api))
		case "metrics":
			mods = append(mods, s.metrics.Clone())
		case "tracing":
			mods = append(mods, tracing.New())
		}
	}
	return mods
}

// newPatcher returns a Patcher over api using the configured modules.
func (o *options) newPatcher(api host.Adapter, mods *moduleSet) *reconcile.Patcher {
	attrs, _ := api.(host.Attributer)
	return reconcile.New(mods.build(attrs),
		reconcile.WithAdapter(api),
		reconcile.WithLogger(o.logger),
		reconcile.WithValidation(o.cfg.Validate),
	)
}
